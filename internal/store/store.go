package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	auditdomain "github.com/smallbiznis/snackbar/internal/audit/domain"
	ingredientdomain "github.com/smallbiznis/snackbar/internal/ingredient/domain"
	"github.com/smallbiznis/snackbar/internal/observability/metrics"
	productdomain "github.com/smallbiznis/snackbar/internal/product/domain"
	receiptdomain "github.com/smallbiznis/snackbar/internal/receipt/domain"
	saledomain "github.com/smallbiznis/snackbar/internal/sale/domain"
	usagereportdomain "github.com/smallbiznis/snackbar/internal/usagereport/domain"
	"github.com/smallbiznis/snackbar/pkg/kv"
	"go.uber.org/zap"
)

// Keys of the persisted collections.
const (
	KeyProducts        = "products"
	KeyIngredients     = "ingredients"
	KeySales           = "sales"
	KeyReports         = "daily_reports"
	KeyReceipts        = "receipts"
	KeyActionLogs      = "action_logs"
	KeyLastOrderNumber = "lastOrderNumber"
)

// Store is the single owner of every collection. It mirrors the backend in
// memory and writes each transaction back as one batch.
type Store struct {
	mu      sync.RWMutex
	backend kv.Backend
	log     *zap.Logger
	metrics *metrics.POSMetrics
	state   *state
}

type state struct {
	products    *Table[*productdomain.Product]
	ingredients *Table[*ingredientdomain.Ingredient]
	sales       *Table[*saledomain.Sale]
	reports     *Table[*usagereportdomain.DailyUsageReport]
	receipts    *Table[*receiptdomain.Receipt]

	logs      []auditdomain.LogEntry
	logsDirty bool

	lastOrderNumber int64
	counterDirty    bool
}

// Open loads every collection from backend. Missing keys start empty.
func Open(ctx context.Context, backend kv.Backend, log *zap.Logger, m *metrics.POSMetrics) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	st, err := load(ctx, backend)
	if err != nil {
		return nil, err
	}
	st.freeze()

	log.Info("store opened",
		zap.Int("products", st.products.Len()),
		zap.Int("ingredients", st.ingredients.Len()),
		zap.Int("sales", st.sales.Len()),
		zap.Int64("last_order_number", st.lastOrderNumber),
	)
	return &Store{
		backend: backend,
		log:     log.Named("store"),
		metrics: m,
		state:   st,
	}, nil
}

// View runs fn against the committed state. Writes through the Tx fail with
// ErrReadOnly.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&Tx{st: s.state})
}

// Update runs fn on a private copy of the state and commits every collection
// it touched in one backend batch. When fn or the commit fails nothing
// changes.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.fork()
	if err := fn(&Tx{st: next, writable: true}); err != nil {
		return err
	}

	ops, err := next.pendingOps()
	if err != nil {
		return &StorageError{Op: "encode", Err: err}
	}
	if len(ops) == 0 {
		return nil
	}

	start := time.Now()
	err = s.backend.Batch(ctx, ops)
	s.metrics.ObserveCommit(time.Since(start), err)
	if err != nil {
		keys := opKeys(ops)
		s.log.Error("commit failed", zap.String("keys", keys), zap.Error(err))
		return &StorageError{Op: "commit", Key: keys, Err: err}
	}

	next.freeze()
	s.state = next
	return nil
}

// Tx is the view of the state handed to View and Update callbacks.
type Tx struct {
	st       *state
	writable bool
}

func (tx *Tx) Products() *Table[*productdomain.Product] { return tx.st.products }

func (tx *Tx) Ingredients() *Table[*ingredientdomain.Ingredient] { return tx.st.ingredients }

func (tx *Tx) Sales() *Table[*saledomain.Sale] { return tx.st.sales }

func (tx *Tx) Reports() *Table[*usagereportdomain.DailyUsageReport] { return tx.st.reports }

func (tx *Tx) Receipts() *Table[*receiptdomain.Receipt] { return tx.st.receipts }

// AppendLog records entry as the newest action log entry.
func (tx *Tx) AppendLog(entry auditdomain.LogEntry) error {
	if !tx.writable {
		return ErrReadOnly
	}
	logs := make([]auditdomain.LogEntry, 0, len(tx.st.logs)+1)
	logs = append(logs, entry)
	tx.st.logs = append(logs, tx.st.logs...)
	tx.st.logsDirty = true
	return nil
}

// Logs returns the action log, newest first.
func (tx *Tx) Logs() []auditdomain.LogEntry {
	return append([]auditdomain.LogEntry(nil), tx.st.logs...)
}

// NextOrderNumber increments the persisted order counter and returns the new
// value. The counter is never derived from the sales collection.
func (tx *Tx) NextOrderNumber() (int64, error) {
	if !tx.writable {
		return 0, ErrReadOnly
	}
	tx.st.lastOrderNumber++
	tx.st.counterDirty = true
	return tx.st.lastOrderNumber, nil
}

func (tx *Tx) LastOrderNumber() int64 { return tx.st.lastOrderNumber }

func load(ctx context.Context, backend kv.Backend) (*state, error) {
	read := func(key string) ([]byte, error) {
		raw, err := backend.Load(ctx, key)
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, &StorageError{Op: "load", Key: key, Err: err}
		}
		return raw, nil
	}

	st := &state{}
	var err error
	if st.products, err = loadTable[*productdomain.Product](read, KeyProducts); err != nil {
		return nil, err
	}
	if st.ingredients, err = loadTable[*ingredientdomain.Ingredient](read, KeyIngredients); err != nil {
		return nil, err
	}
	if st.sales, err = loadTable[*saledomain.Sale](read, KeySales); err != nil {
		return nil, err
	}
	if st.reports, err = loadTable[*usagereportdomain.DailyUsageReport](read, KeyReports); err != nil {
		return nil, err
	}
	if st.receipts, err = loadTable[*receiptdomain.Receipt](read, KeyReceipts); err != nil {
		return nil, err
	}

	raw, err := read(KeyActionLogs)
	if err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &st.logs); err != nil {
			return nil, &StorageError{Op: "decode", Key: KeyActionLogs, Err: err}
		}
	}

	raw, err = read(KeyLastOrderNumber)
	if err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		n, err := strconv.ParseInt(strings.Trim(strings.TrimSpace(string(raw)), `"`), 10, 64)
		if err != nil {
			return nil, &StorageError{Op: "decode", Key: KeyLastOrderNumber, Err: err}
		}
		st.lastOrderNumber = n
	}
	return st, nil
}

func loadTable[T Record[T]](read func(string) ([]byte, error), key string) (*Table[T], error) {
	raw, err := read(key)
	if err != nil {
		return nil, err
	}
	t, err := decodeTable[T](key, raw)
	if err != nil {
		return nil, &StorageError{Op: "decode", Key: key, Err: err}
	}
	return t, nil
}

func (st *state) fork() *state {
	return &state{
		products:        st.products.fork(),
		ingredients:     st.ingredients.fork(),
		sales:           st.sales.fork(),
		reports:         st.reports.fork(),
		receipts:        st.receipts.fork(),
		logs:            st.logs,
		lastOrderNumber: st.lastOrderNumber,
	}
}

func (st *state) freeze() {
	st.products.freeze()
	st.ingredients.freeze()
	st.sales.freeze()
	st.reports.freeze()
	st.receipts.freeze()
	st.logsDirty = false
	st.counterDirty = false
}

type encoder interface {
	encode() ([]byte, error)
}

func (st *state) pendingOps() ([]kv.Op, error) {
	var ops []kv.Op
	add := func(key string, dirty bool, t encoder) error {
		if !dirty {
			return nil
		}
		raw, err := t.encode()
		if err != nil {
			return err
		}
		ops = append(ops, kv.Op{Key: key, Value: raw})
		return nil
	}

	if err := add(KeyProducts, st.products.dirty, st.products); err != nil {
		return nil, err
	}
	if err := add(KeyIngredients, st.ingredients.dirty, st.ingredients); err != nil {
		return nil, err
	}
	if err := add(KeySales, st.sales.dirty, st.sales); err != nil {
		return nil, err
	}
	if err := add(KeyReports, st.reports.dirty, st.reports); err != nil {
		return nil, err
	}
	if err := add(KeyReceipts, st.receipts.dirty, st.receipts); err != nil {
		return nil, err
	}
	if st.logsDirty {
		raw, err := json.Marshal(st.logs)
		if err != nil {
			return nil, err
		}
		ops = append(ops, kv.Op{Key: KeyActionLogs, Value: raw})
	}
	if st.counterDirty {
		ops = append(ops, kv.Op{Key: KeyLastOrderNumber, Value: []byte(strconv.Quote(strconv.FormatInt(st.lastOrderNumber, 10)))})
	}
	return ops, nil
}

func opKeys(ops []kv.Op) string {
	keys := make([]string, 0, len(ops))
	for _, op := range ops {
		keys = append(keys, op.Key)
	}
	return strings.Join(keys, ",")
}
