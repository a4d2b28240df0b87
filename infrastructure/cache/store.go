package cache

import (
	"context"
	"time"
)

// Store é o contrato do armazém chave-valor compartilhado entre instâncias.
// Todas as operações de exclusão mútua do motor (leases de refresh,
// deduplicação de jobs, contadores de rate limit) dependem das primitivas
// atômicas SetIfAbsent e Increment — locks em memória não bastam porque o
// sistema roda em múltiplos processos.
type Store interface {
	// Get retorna o valor e um indicador de existência.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put grava o valor com o TTL informado. TTL zero significa sem expiração.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Has informa se a chave existe.
	Has(ctx context.Context, key string) (bool, error)

	// Forget remove a chave.
	Forget(ctx context.Context, key string) error

	// SetIfAbsent grava somente se a chave não existir (check-and-set
	// atômico). Retorna true quando a gravação aconteceu.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Increment incrementa atomicamente um contador de janela fixa,
	// aplicando o TTL apenas na criação da chave.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)

	// IncrementBy é como Increment, com delta arbitrário (somas de
	// latência, tokens de cota).
	IncrementBy(ctx context.Context, key string, delta int64, window time.Duration) (int64, error)

	// TTL retorna o tempo restante de vida da chave (zero se não expira
	// ou não existe).
	TTL(ctx context.Context, key string) (time.Duration, error)
}
