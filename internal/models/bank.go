package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// BloodGroup is one of the eight supported blood group labels.
type BloodGroup string

const (
	GroupAPos  BloodGroup = "A+"
	GroupANeg  BloodGroup = "A-"
	GroupBPos  BloodGroup = "B+"
	GroupBNeg  BloodGroup = "B-"
	GroupABPos BloodGroup = "AB+"
	GroupABNeg BloodGroup = "AB-"
	GroupOPos  BloodGroup = "O+"
	GroupONeg  BloodGroup = "O-"
)

// BloodGroups lists every valid group in display order.
var BloodGroups = []BloodGroup{
	GroupAPos, GroupANeg, GroupBPos, GroupBNeg,
	GroupABPos, GroupABNeg, GroupOPos, GroupONeg,
}

// Valid reports whether the group is one of the supported labels.
func (g BloodGroup) Valid() bool {
	for _, known := range BloodGroups {
		if g == known {
			return true
		}
	}
	return false
}

// StockMap maps blood group to available unit count. Stored as JSONB.
type StockMap map[BloodGroup]int

// Units returns the stock entry for a group, treating a missing entry as 0.
func (s StockMap) Units(group BloodGroup) int {
	if s == nil {
		return 0
	}
	return s[group]
}

// Clone returns an independent copy so callers can stage changes.
func (s StockMap) Clone() StockMap {
	out := make(StockMap, len(s))
	for g, n := range s {
		out[g] = n
	}
	return out
}

// Value implements driver.Valuer.
func (s StockMap) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *StockMap) Scan(src interface{}) error {
	if src == nil {
		*s = StockMap{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported stock column type %T", src)
	}
	if len(raw) == 0 {
		*s = StockMap{}
		return nil
	}
	return json.Unmarshal(raw, s)
}

// BloodBank is an organization account holding a blood-group inventory.
// Its identifier equals the owning operator's user id.
type BloodBank struct {
	ID                string         `db:"id" json:"id"`
	Name              string         `db:"name" json:"name"`
	Address           string         `db:"address" json:"address"`
	City              string         `db:"city" json:"city"`
	Contact           string         `db:"contact" json:"contact"`
	Email             string         `db:"email" json:"email"`
	Website           string         `db:"website" json:"website"`
	Description       string         `db:"description" json:"description"`
	LogoURL           string         `db:"logo_url" json:"logo_url"`
	BloodGroups       pq.StringArray `db:"blood_groups" json:"blood_groups"`
	Stock             StockMap       `db:"stock" json:"stock"`
	LowStockThreshold int            `db:"low_stock_threshold" json:"low_stock_threshold"`
	SearchKeywords    pq.StringArray `db:"search_keywords" json:"-"`
	// Version is the optimistic-concurrency token guarding stock writes.
	Version   int       `db:"version" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LowStockGroups returns the groups at or below the bank's threshold,
// restricted to the groups the bank supports.
func (b *BloodBank) LowStockGroups() []BloodGroup {
	threshold := b.LowStockThreshold
	if threshold <= 0 {
		threshold = 5
	}
	var low []BloodGroup
	for _, raw := range b.BloodGroups {
		group := BloodGroup(raw)
		if b.Stock.Units(group) <= threshold {
			low = append(low, group)
		}
	}
	return low
}

// BankFilter captures filtering criteria for listing blood banks.
type BankFilter struct {
	City     string
	Group    BloodGroup
	Keyword  string
	Page     int
	PageSize int
}
