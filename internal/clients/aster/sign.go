package aster

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/rfglabs/modeldesk/internal/models"
)

// recvWindow is the request validity window in milliseconds expected by
// the exchange.
const recvWindow = 50000

// Signer produces the cryptographic signature over a request digest for
// one account. The wallet signature scheme itself is an external
// collaborator; the client only canonicalizes parameters, computes the
// digest, and delegates.
type Signer interface {
	Sign(digest []byte, account models.Account) (string, error)
}

// NoopSigner returns an empty signature. Used for unsigned endpoint
// variants and in tests.
type NoopSigner struct{}

func (NoopSigner) Sign(_ []byte, _ models.Account) (string, error) {
	return "", nil
}

// stringifyParams normalizes parameter values into their canonical string
// form: booleans as "true"/"false", integers in decimal, floats with
// trailing zeros trimmed.
func stringifyParams(params map[string]interface{}) map[string]string {
	normalized := make(map[string]string, len(params))
	for key, value := range params {
		switch v := value.(type) {
		case bool:
			normalized[key] = strconv.FormatBool(v)
		case int:
			normalized[key] = strconv.Itoa(v)
		case int64:
			normalized[key] = strconv.FormatInt(v, 10)
		case float64:
			if v == float64(int64(v)) {
				normalized[key] = strconv.FormatInt(int64(v), 10)
			} else {
				s := strconv.FormatFloat(v, 'f', 10, 64)
				s = strings.TrimRight(s, "0")
				s = strings.TrimRight(s, ".")
				normalized[key] = s
			}
		default:
			normalized[key] = fmt.Sprintf("%v", v)
		}
	}
	return normalized
}

// canonicalJSON serializes normalized params as a JSON object with keys in
// ascending order, the form the digest is computed over.
func canonicalJSON(normalized map[string]string) []byte {
	keys := make([]string, 0, len(normalized))
	for k := range normalized {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		vb, _ := json.Marshal(normalized[k])
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return []byte(b.String())
}

const addressLen = 20

// decodeAddress parses a 0x-prefixed hex address into its 20 raw bytes.
func decodeAddress(addr string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(addr), "0x"))
	if err != nil {
		return nil, fmt.Errorf("address %q: %w", addr, err)
	}
	if len(b) != addressLen {
		return nil, fmt.Errorf("address %q: expected %d bytes, got %d", addr, addressLen, len(b))
	}
	return b, nil
}

// abiEncodeAuthPayload packs (string, address, address, uint256) with the
// standard ABI head/tail layout: slot 0 holds the offset to the dynamic
// string, slots 1-3 hold the left-padded addresses and the nonce, and the
// tail carries the string length followed by its zero-padded bytes.
func abiEncodeAuthPayload(canonical []byte, user, signer []byte, nonce int64) []byte {
	padded := len(canonical)
	if rem := padded % 32; rem != 0 {
		padded += 32 - rem
	}
	buf := make([]byte, 5*32+padded)

	buf[31] = 4 * 32 // string data starts after the four head slots
	copy(buf[32+12:], user)
	copy(buf[64+12:], signer)
	big.NewInt(nonce).FillBytes(buf[96:128])
	big.NewInt(int64(len(canonical))).FillBytes(buf[128:160])
	copy(buf[160:], canonical)
	return buf
}

// digestParams computes the keccak256 digest over the ABI-encoded tuple of
// the canonical payload, both account addresses, and the nonce. This is
// the digest a wallet signer verifies against upstream.
func digestParams(canonical []byte, account models.Account, nonce int64) ([]byte, error) {
	user, err := decodeAddress(account.PublicAddress)
	if err != nil {
		return nil, err
	}
	signer, err := decodeAddress(account.SignerAddress)
	if err != nil {
		return nil, err
	}

	h := sha3.NewLegacyKeccak256()
	h.Write(abiEncodeAuthPayload(canonical, user, signer, nonce))
	return h.Sum(nil), nil
}

// signParams canonicalizes params, injects timestamp/recvWindow/nonce, and
// appends the collaborator's signature plus both addresses.
func signParams(params map[string]interface{}, account models.Account, signer Signer, now func() time.Time) (url.Values, error) {
	ts := now()
	params["timestamp"] = ts.Unix()
	params["recvWindow"] = recvWindow

	// Nonce is a microsecond timestamp; monotonic enough per account at
	// the request rates this client is limited to.
	nonce := ts.UnixMicro()

	normalized := stringifyParams(params)
	canonical := canonicalJSON(normalized)
	digest, err := digestParams(canonical, account, nonce)
	if err != nil {
		return nil, err
	}

	signature, err := signer.Sign(digest, account)
	if err != nil {
		return nil, fmt.Errorf("signer failed: %w", err)
	}

	values := url.Values{}
	for k, v := range normalized {
		values.Set(k, v)
	}
	values.Set("nonce", strconv.FormatInt(nonce, 10))
	values.Set("user", account.PublicAddress)
	values.Set("signer", account.SignerAddress)
	values.Set("signature", signature)

	return values, nil
}
