package masterdata

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// GenerateCode produces an entity code such as "KMS-PM-1234" from a prefix
// and a random four-digit suffix. The suffix draws on a UUID rather than a
// seeded PRNG so two dialogs opened in the same instant do not collide.
// Uniqueness across the whole catalog remains the server's responsibility;
// a duplicate code is rejected there and surfaces as a 4xx on submit.
func GenerateCode(prefix string) string {
	id := uuid.New()
	n := binary.BigEndian.Uint32(id[:4]) % 10000
	return fmt.Sprintf("%s-%04d", prefix, n)
}
