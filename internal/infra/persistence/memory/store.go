// Package memory provides the in-memory implementation of the inventory
// store. State lives for the lifetime of the process only.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"tmfstock/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

type (
	// Product aliases domain.Product for in-memory persistence operations.
	Product = domain.Product
	// Technician aliases domain.Technician.
	Technician = domain.Technician
	// Movement aliases domain.Movement.
	Movement = domain.Movement
	// ToolLoan aliases domain.ToolLoan.
	ToolLoan = domain.ToolLoan
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

// memoryState keeps every collection in presentation order: products and
// technicians in insertion order, movements and tool loans newest first.
type memoryState struct {
	products    []Product
	technicians []Technician
	movements   []Movement
	loans       []ToolLoan
}

func (s memoryState) clone() memoryState {
	cloned := memoryState{
		products:    make([]Product, len(s.products)),
		technicians: make([]Technician, len(s.technicians)),
		movements:   make([]Movement, len(s.movements)),
		loans:       make([]ToolLoan, len(s.loans)),
	}
	for i, p := range s.products {
		cloned.products[i] = cloneProduct(p)
	}
	copy(cloned.technicians, s.technicians)
	for i, m := range s.movements {
		cloned.movements[i] = cloneMovement(m)
	}
	for i, l := range s.loans {
		cloned.loans[i] = cloneToolLoan(l)
	}
	return cloned
}

func stateFromSnapshot(snap domain.Snapshot) memoryState {
	return memoryState{
		products:    snap.Products,
		technicians: snap.Technicians,
		movements:   snap.Movements,
		loans:       snap.ToolLoans,
	}.clone()
}

func (s memoryState) snapshot() domain.Snapshot {
	c := s.clone()
	return domain.Snapshot{
		Products:    c.products,
		Technicians: c.technicians,
		Movements:   c.movements,
		ToolLoans:   c.loans,
	}
}

func cloneProduct(p Product) Product {
	p.Unit = clonePtr(p.Unit)
	return p
}

func cloneMovement(m Movement) Movement {
	m.TechnicianID = clonePtr(m.TechnicianID)
	m.Comment = clonePtr(m.Comment)
	m.CreatedBy = clonePtr(m.CreatedBy)
	m.Attachment = clonePtr(m.Attachment)
	return m
}

func cloneToolLoan(l ToolLoan) ToolLoan {
	l.SerialNumber = clonePtr(l.SerialNumber)
	l.TechnicianID = clonePtr(l.TechnicianID)
	l.DueDate = clonePtr(l.DueDate)
	l.Notes = clonePtr(l.Notes)
	return l
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the time source used to stamp transactions.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// WithIDGenerator overrides identifier generation for created entities.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.idFn = gen
		}
	}
}

// Store provides an in-memory transactional store. A single writer holds the
// lock for the whole of RunInTransaction; readers get deep copies.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
	idFn   func() string
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine, opts ...Option) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	s := &Store{
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
		idFn:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns an immutable deep copy of the committed state.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.snapshot()
}

// ImportState replaces the committed state, bypassing the rules engine. Used
// for seeding.
func (s *Store) ImportState(snap domain.Snapshot) {
	cloned := stateFromSnapshot(snap)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = cloned
}

// RulesEngine exposes the configured engine so callers can register rules.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

// RunInTransaction executes fn within a transactional copy of the store state.
// The copy replaces the committed state only when fn succeeds and no blocking
// rule fires.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, newTransactionView(&tx.state), tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only copy of the committed state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(newTransactionView(&snapshot))
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// Now is the instant stamped on every record written by this transaction.
func (tx *transaction) Now() time.Time { return tx.now }

func (tx *transaction) newID(id string) string {
	if id != "" {
		return id
	}
	return tx.store.idFn()
}

func indexOf[T any](items []T, id string, key func(T) string) int {
	for i, it := range items {
		if key(it) == id {
			return i
		}
	}
	return -1
}

func productID(p Product) string       { return p.ID }
func technicianID(t Technician) string { return t.ID }
func toolLoanID(l ToolLoan) string     { return l.ID }
func movementID(m Movement) string     { return m.ID }

// FindProduct looks up a product within the transaction scope.
func (tx *transaction) FindProduct(id string) (Product, bool) {
	return newTransactionView(&tx.state).FindProduct(id)
}

// FindTechnician looks up a technician within the transaction scope.
func (tx *transaction) FindTechnician(id string) (Technician, bool) {
	return newTransactionView(&tx.state).FindTechnician(id)
}

// FindToolLoan looks up a tool loan within the transaction scope.
func (tx *transaction) FindToolLoan(id string) (ToolLoan, bool) {
	return newTransactionView(&tx.state).FindToolLoan(id)
}

// CreateProduct appends a product to the catalogue.
func (tx *transaction) CreateProduct(p Product) (Product, error) {
	p.ID = tx.newID(p.ID)
	if indexOf(tx.state.products, p.ID, productID) >= 0 {
		return Product{}, fmt.Errorf("product %q already exists", p.ID)
	}
	tx.state.products = append(tx.state.products, cloneProduct(p))
	tx.recordChange(Change{Entity: domain.EntityProduct, Action: domain.ActionCreate, After: cloneProduct(p)})
	return cloneProduct(p), nil
}

// UpdateProduct mutates a product in place, keeping its position.
func (tx *transaction) UpdateProduct(id string, mutator func(*Product) error) (Product, error) {
	i := indexOf(tx.state.products, id, productID)
	if i < 0 {
		return Product{}, domain.ErrNotFound{Entity: domain.EntityProduct, ID: id}
	}
	current := cloneProduct(tx.state.products[i])
	before := cloneProduct(current)
	if err := mutator(&current); err != nil {
		return Product{}, err
	}
	current.ID = id
	tx.state.products[i] = cloneProduct(current)
	tx.recordChange(Change{Entity: domain.EntityProduct, Action: domain.ActionUpdate, Before: before, After: cloneProduct(current)})
	return current, nil
}

// DeleteProduct removes a product and every movement recorded against it.
func (tx *transaction) DeleteProduct(id string) error {
	i := indexOf(tx.state.products, id, productID)
	if i < 0 {
		return domain.ErrNotFound{Entity: domain.EntityProduct, ID: id}
	}
	before := tx.state.products[i]
	tx.state.products = append(tx.state.products[:i:i], tx.state.products[i+1:]...)
	kept := tx.state.movements[:0:0]
	for _, m := range tx.state.movements {
		if m.ProductID == id {
			tx.recordChange(Change{Entity: domain.EntityMovement, Action: domain.ActionDelete, Before: cloneMovement(m)})
			continue
		}
		kept = append(kept, m)
	}
	tx.state.movements = kept
	tx.recordChange(Change{Entity: domain.EntityProduct, Action: domain.ActionDelete, Before: before})
	return nil
}

// CreateTechnician appends a technician.
func (tx *transaction) CreateTechnician(t Technician) (Technician, error) {
	t.ID = tx.newID(t.ID)
	if indexOf(tx.state.technicians, t.ID, technicianID) >= 0 {
		return Technician{}, fmt.Errorf("technician %q already exists", t.ID)
	}
	tx.state.technicians = append(tx.state.technicians, t)
	tx.recordChange(Change{Entity: domain.EntityTechnician, Action: domain.ActionCreate, After: t})
	return t, nil
}

// UpdateTechnician mutates a technician in place.
func (tx *transaction) UpdateTechnician(id string, mutator func(*Technician) error) (Technician, error) {
	i := indexOf(tx.state.technicians, id, technicianID)
	if i < 0 {
		return Technician{}, domain.ErrNotFound{Entity: domain.EntityTechnician, ID: id}
	}
	current := tx.state.technicians[i]
	before := current
	if err := mutator(&current); err != nil {
		return Technician{}, err
	}
	current.ID = id
	tx.state.technicians[i] = current
	tx.recordChange(Change{Entity: domain.EntityTechnician, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteTechnician removes a technician and clears the reference on every
// movement that named them. Tool loans are left untouched.
func (tx *transaction) DeleteTechnician(id string) error {
	i := indexOf(tx.state.technicians, id, technicianID)
	if i < 0 {
		return domain.ErrNotFound{Entity: domain.EntityTechnician, ID: id}
	}
	before := tx.state.technicians[i]
	tx.state.technicians = append(tx.state.technicians[:i:i], tx.state.technicians[i+1:]...)
	for j, m := range tx.state.movements {
		if m.TechnicianID != nil && *m.TechnicianID == id {
			updated := cloneMovement(m)
			updated.TechnicianID = nil
			tx.state.movements[j] = updated
			tx.recordChange(Change{Entity: domain.EntityMovement, Action: domain.ActionUpdate, Before: cloneMovement(m), After: cloneMovement(updated)})
		}
	}
	tx.recordChange(Change{Entity: domain.EntityTechnician, Action: domain.ActionDelete, Before: before})
	return nil
}

// AppendMovement places a new movement at the head of the ledger. A zero
// CreatedAt is stamped with the transaction time.
func (tx *transaction) AppendMovement(m Movement) (Movement, error) {
	m.ID = tx.newID(m.ID)
	if indexOf(tx.state.movements, m.ID, movementID) >= 0 {
		return Movement{}, fmt.Errorf("movement %q already exists", m.ID)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = tx.now
	}
	stored := cloneMovement(m)
	tx.state.movements = append([]Movement{stored}, tx.state.movements...)
	tx.recordChange(Change{Entity: domain.EntityMovement, Action: domain.ActionCreate, After: cloneMovement(m)})
	return cloneMovement(m), nil
}

// CreateToolLoan places a new tool loan at the head of the list.
func (tx *transaction) CreateToolLoan(l ToolLoan) (ToolLoan, error) {
	l.ID = tx.newID(l.ID)
	if indexOf(tx.state.loans, l.ID, toolLoanID) >= 0 {
		return ToolLoan{}, fmt.Errorf("tool loan %q already exists", l.ID)
	}
	tx.state.loans = append([]ToolLoan{cloneToolLoan(l)}, tx.state.loans...)
	tx.recordChange(Change{Entity: domain.EntityToolLoan, Action: domain.ActionCreate, After: cloneToolLoan(l)})
	return cloneToolLoan(l), nil
}

// UpdateToolLoan mutates a tool loan in place.
func (tx *transaction) UpdateToolLoan(id string, mutator func(*ToolLoan) error) (ToolLoan, error) {
	i := indexOf(tx.state.loans, id, toolLoanID)
	if i < 0 {
		return ToolLoan{}, domain.ErrNotFound{Entity: domain.EntityToolLoan, ID: id}
	}
	current := cloneToolLoan(tx.state.loans[i])
	before := cloneToolLoan(current)
	if err := mutator(&current); err != nil {
		return ToolLoan{}, err
	}
	current.ID = id
	tx.state.loans[i] = cloneToolLoan(current)
	tx.recordChange(Change{Entity: domain.EntityToolLoan, Action: domain.ActionUpdate, Before: before, After: cloneToolLoan(current)})
	return current, nil
}

// DeleteToolLoan removes a tool loan.
func (tx *transaction) DeleteToolLoan(id string) error {
	i := indexOf(tx.state.loans, id, toolLoanID)
	if i < 0 {
		return domain.ErrNotFound{Entity: domain.EntityToolLoan, ID: id}
	}
	before := tx.state.loans[i]
	tx.state.loans = append(tx.state.loans[:i:i], tx.state.loans[i+1:]...)
	tx.recordChange(Change{Entity: domain.EntityToolLoan, Action: domain.ActionDelete, Before: before})
	return nil
}
