package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"redbull-counter-backend/internal/catalog"
	"redbull-counter-backend/internal/kv"
	"redbull-counter-backend/internal/ledger"
)

// Store persists a Session as three keyed entries: stock, sales and the
// payment asset. It is the only component allowed to write or erase them.
type Store struct {
	backend      kv.Store
	stockKey     string
	salesKey     string
	paymentAsset string
}

// NewStore namespaces the entry keys with prefix, e.g. "redbull" gives
// redbullStock, redbullSales and redbullPaymentAsset.
func NewStore(backend kv.Store, prefix string) *Store {
	return &Store{
		backend:      backend,
		stockKey:     keyName(prefix, "stock"),
		salesKey:     keyName(prefix, "sales"),
		paymentAsset: keyName(prefix, "paymentAsset"),
	}
}

func keyName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + strings.ToUpper(name[:1]) + name[1:]
}

// Keys returns the entry keys in stock, sales, payment asset order.
func (s *Store) Keys() []string {
	return []string{s.stockKey, s.salesKey, s.paymentAsset}
}

// Load returns the persisted session, or nil when none exists. Data that
// fails validation yields a nil session and an error wrapping
// ErrPersistenceCorrupt; a partially populated session is never returned.
func (s *Store) Load(ctx context.Context) (*Session, error) {
	rawStock, hasStock, err := s.backend.Get(ctx, s.stockKey)
	if err != nil {
		return nil, fmt.Errorf("load stock: %w", err)
	}
	rawSales, hasSales, err := s.backend.Get(ctx, s.salesKey)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	asset, _, err := s.backend.Get(ctx, s.paymentAsset)
	if err != nil {
		return nil, fmt.Errorf("load payment asset: %w", err)
	}

	if !hasStock && !hasSales {
		return nil, nil
	}
	if !hasStock || !hasSales {
		return nil, fmt.Errorf("%w: stock present=%t, sales present=%t", ErrPersistenceCorrupt, hasStock, hasSales)
	}

	stock, err := decodeStock(rawStock)
	if err != nil {
		return nil, fmt.Errorf("%w: stock: %w", ErrPersistenceCorrupt, err)
	}
	sales, err := decodeSales(rawSales)
	if err != nil {
		return nil, fmt.Errorf("%w: sales: %w", ErrPersistenceCorrupt, err)
	}
	if err := ledger.Validate(stock, sales); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceCorrupt, err)
	}

	return &Session{Stock: stock, Sales: sales, PaymentAsset: asset}, nil
}

// Save writes every entry in one commit. An empty payment asset removes
// its entry in the same commit.
func (s *Store) Save(ctx context.Context, sess Session) error {
	stock, err := json.Marshal(sess.Stock)
	if err != nil {
		return &PersistenceWriteError{Op: "save", Err: err}
	}
	sales, err := json.Marshal(sess.Sales)
	if err != nil {
		return &PersistenceWriteError{Op: "save", Err: err}
	}

	change := kv.Change{Set: map[string]string{
		s.stockKey: string(stock),
		s.salesKey: string(sales),
	}}
	if sess.PaymentAsset != "" {
		change.Set[s.paymentAsset] = sess.PaymentAsset
	} else {
		change.Remove = []string{s.paymentAsset}
	}

	if err := s.backend.Commit(ctx, change); err != nil {
		return &PersistenceWriteError{Op: "save", Err: err}
	}
	return nil
}

// Clear removes all three entries in one commit.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Commit(ctx, kv.Change{Remove: s.Keys()}); err != nil {
		return &PersistenceWriteError{Op: "clear", Err: err}
	}
	return nil
}

func decodeStock(raw string) (ledger.StockLevel, error) {
	var m map[string]int
	if err := decodeStrict(raw, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("not a JSON object")
	}
	stock := make(ledger.StockLevel, len(m))
	for k, v := range m {
		id, err := catalog.ParseFlavorID(k)
		if err != nil {
			return nil, err
		}
		stock[id] = v
	}
	return stock, nil
}

type storedTally struct {
	Cash    *int `json:"cash"`
	Digital *int `json:"digital"`
}

func decodeSales(raw string) (ledger.SaleCount, error) {
	var m map[string]storedTally
	if err := decodeStrict(raw, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("not a JSON object")
	}
	sales := make(ledger.SaleCount, len(m))
	for k, v := range m {
		id, err := catalog.ParseFlavorID(k)
		if err != nil {
			return nil, err
		}
		if v.Cash == nil || v.Digital == nil {
			return nil, fmt.Errorf("%s: cash and digital counts are required", k)
		}
		sales[id] = ledger.Tally{Cash: *v.Cash, Digital: *v.Digital}
	}
	return sales, nil
}

func decodeStrict(raw string, dst any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("invalid JSON: trailing content")
	}
	return nil
}
