package config

import (
	"os"
	"strconv"
	"strings"

	id "fundledger/pkg/domain"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string

	// Owner administers the verifier set and fee policy and receives
	// emergency withdrawals.
	Owner        id.Principal
	FeeRecipient id.Principal

	// PostgresDSN, when set, backs the researcher registry with postgres
	// instead of the in-memory store.
	PostgresDSN string
	// RedisAddr, when set, enables the project view cache.
	RedisAddr string
	// KafkaBrokers, when non-empty, publishes ledger events to KafkaTopic.
	KafkaBrokers []string
	KafkaTopic   string

	// AuditBuffer > 0 switches the event publisher to async with that
	// channel capacity.
	AuditBuffer int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("FUNDLEDGER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("FUNDLEDGER_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	owner := os.Getenv("FUNDLEDGER_OWNER")
	if owner == "" {
		owner = "platform-owner"
	}
	feeRecipient := os.Getenv("FUNDLEDGER_FEE_RECIPIENT")
	if feeRecipient == "" {
		feeRecipient = owner
	}

	topic := os.Getenv("FUNDLEDGER_KAFKA_TOPIC")
	if topic == "" {
		topic = "fundledger.events"
	}

	var brokers []string
	if raw := os.Getenv("FUNDLEDGER_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	buffer := 0
	if raw := os.Getenv("FUNDLEDGER_AUDIT_BUFFER"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			buffer = n
		}
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		Owner:         id.Principal(owner),
		FeeRecipient:  id.Principal(feeRecipient),
		PostgresDSN:   os.Getenv("FUNDLEDGER_POSTGRES_DSN"),
		RedisAddr:     os.Getenv("FUNDLEDGER_REDIS_ADDR"),
		KafkaBrokers:  brokers,
		KafkaTopic:    topic,
		AuditBuffer:   buffer,
	}
}
