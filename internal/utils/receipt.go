package utils

import (
	"strings"

	"github.com/google/uuid"
)

// ReceiptPrefix marks gateway receipts created by this service.
const ReceiptPrefix = "rcpt_"

// GenerateReceipt returns a unique gateway receipt id such as
// rcpt_1f0c6c1e9a2b4c7d8e9f00112233aabb. It stays within the 40 character
// limit gateways commonly impose on receipts.
func GenerateReceipt() string {
	return ReceiptPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}
