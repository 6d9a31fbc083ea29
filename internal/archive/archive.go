// Package archive appends raw snapshot data to monthly line-delimited JSON
// files. The archive is an audit trail independent of the relational store.
package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/flatwatch/flatwatch/internal/config"
	offerdomain "github.com/flatwatch/flatwatch/internal/offer/domain"
	"go.uber.org/fx"
)

// Line is one archived record: the snapshot time and source, plus the
// offer's own fields inlined.
type Line struct {
	TS       string `json:"ts"`
	Provider string `json:"provider"`
	offerdomain.Offer
}

type Archiver struct {
	dataDir string
}

func New(cfg config.Config) *Archiver {
	return &Archiver{dataDir: cfg.DataDir}
}

// Append writes one line per offer to the current month's file.
func (a *Archiver) Append(sourceName string, offers []offerdomain.Offer, snapTime time.Time, now time.Time) error {
	if len(offers) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, o := range offers {
		if err := enc.Encode(Line{
			TS:       snapTime.Format(time.RFC3339),
			Provider: sourceName,
			Offer:    o,
		}); err != nil {
			return fmt.Errorf("encode archive line: %w", err)
		}
	}

	path := filepath.Join(a.dataDir, MonthlyStamp(now)+".jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open archive file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("append archive file: %w", err)
	}
	return nil
}

// MonthlyStamp names the archive file for the month of t.
func MonthlyStamp(t time.Time) string {
	return t.Format("2006-01")
}

// DailyStamp is the per-day stamp used by the scheduler guard.
func DailyStamp(t time.Time) string {
	return t.Format("2006-01-02")
}

var Module = fx.Module("archive",
	fx.Provide(New),
)
