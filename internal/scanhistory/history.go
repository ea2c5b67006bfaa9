// Package scanhistory keeps the most recent drug verifications of a session.
package scanhistory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Joeboy77/drug-guard-fe/drugguard"
)

// DefaultLimit is the number of scans kept when New is given limit <= 0.
const DefaultLimit = 10

// ErrEmptyCode is returned for a QR code that is blank after trimming.
var ErrEmptyCode = errors.New("empty QR code")

// Verifier is the part of the API client that verifies QR codes.
type Verifier interface {
	VerifyDrug(ctx context.Context, qrCode, location string) (*drugguard.DrugVerificationResponse, error)
}

// Entry is one successful verification.
type Entry struct {
	QRCode    string
	Location  string
	Result    *drugguard.DrugVerificationResponse
	ScannedAt time.Time
}

// History is a bounded, newest-first list of entries. It is safe for
// concurrent use.
type History struct {
	mu      sync.Mutex
	limit   int
	entries []Entry

	now func() time.Time
}

func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}

	return &History{limit: limit, now: time.Now}
}

// Add records e as the newest entry, dropping the oldest beyond the limit.
func (h *History) Add(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append([]Entry{e}, h.entries...)
	if len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
}

// Entries returns a copy of the entries, newest first.
func (h *History) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]Entry(nil), h.entries...)
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.entries)
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil
}

// Verify checks qrCode with v and records the answer in h. The code is sent
// exactly as scanned; codes that are blank after trimming are rejected
// without a request. Failed verifications are not recorded.
func Verify(ctx context.Context, v Verifier, h *History, qrCode, location string) (*drugguard.DrugVerificationResponse, error) {
	if strings.TrimSpace(qrCode) == "" {
		return nil, ErrEmptyCode
	}

	res, err := v.VerifyDrug(ctx, qrCode, location)
	if err != nil {
		return nil, err
	}

	h.Add(Entry{QRCode: qrCode, Location: location, Result: res, ScannedAt: h.now()})

	return res, nil
}
