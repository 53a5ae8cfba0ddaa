package orchestrator

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"propex/internal/fundprotection/models"
)

// idempotencyDomain separates these keys from any other HMAC use of the
// same secret.
const idempotencyDomain = "propex-fund-protection-step"

// idempotencyKeyFor derives the partner Idempotency-Key for a step. The same
// step always yields the same key, so a retry after a lost response cannot
// move money twice.
func (s *Service) idempotencyKeyFor(step models.FulfillmentStep) string {
	secret := s.idempotencyKey
	if len(secret) == 0 {
		secret = []byte(idempotencyDomain)
	}
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(idempotencyDomain))
	h.Write([]byte("|transaction_id:"))
	h.Write([]byte(step.TransactionID.String()))
	h.Write([]byte("|step_number:"))
	h.Write([]byte(strconv.Itoa(step.StepNumber)))
	h.Write([]byte("|step_type:"))
	h.Write([]byte(step.StepType))
	return hex.EncodeToString(h.Sum(nil))
}

// keyPrefix is safe to log.
func keyPrefix(key string) string {
	if len(key) < 16 {
		return key
	}
	return key[:16] + "..."
}
