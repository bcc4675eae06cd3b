package ledger_test

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/kardex-erp/internal/application/ledger"
	"github.com/tu-usuario/kardex-erp/internal/domain"
	"github.com/tu-usuario/kardex-erp/internal/domain/entity"
	"github.com/tu-usuario/kardex-erp/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria para probar los casos de uso sin PostgreSQL.
// El TxRunner simula el rollback restaurando un snapshot del estado completo:
// si fn falla, ninguna fila queda a medias, igual que en la BD real.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	locations   []*entity.StockLocation
	assignments []*entity.Assignment
	movements   []*entity.Movement
	warehouses  []*entity.Warehouse
	// lockOrder registra los ids de StockLocation en el orden en que se
	// bloquearon, para verificar el orden total anti-deadlock.
	lockOrder []string
}

func (s *memStore) recordLock(id string) {
	s.lockOrder = append(s.lockOrder, id)
}

func (s *memStore) clone() *memStore {
	c := &memStore{}
	for _, l := range s.locations {
		cp := *l
		c.locations = append(c.locations, &cp)
	}
	for _, a := range s.assignments {
		cp := *a
		c.assignments = append(c.assignments, &cp)
	}
	for _, m := range s.movements {
		cp := *m
		c.movements = append(c.movements, &cp)
	}
	for _, w := range s.warehouses {
		cp := *w
		c.warehouses = append(c.warehouses, &cp)
	}
	c.lockOrder = append([]string(nil), s.lockOrder...)
	return c
}

func (s *memStore) findLocation(materialID, locationID string) *entity.StockLocation {
	for _, l := range s.locations {
		if l.MaterialID == materialID && l.LocationID == locationID {
			return l
		}
	}
	return nil
}

// ── TxRunner ──

type memTxRunner struct {
	store *memStore
}

func (r *memTxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockLocationRepository,
	asgRepo repository.AssignmentRepository,
) error) error {
	snapshot := r.store.clone()
	err := fn(&memMovementRepo{r.store}, &memStockRepo{r.store}, &memAssignmentRepo{r.store})
	if err != nil {
		*r.store = *snapshot // rollback
		return err
	}
	return nil
}

// ── StockLocationRepository ──

type memStockRepo struct{ store *memStore }

func (r *memStockRepo) Get(_ context.Context, materialID, locationID string) (*entity.StockLocation, error) {
	return r.store.findLocation(materialID, locationID), nil
}

func (r *memStockRepo) GetForUpdate(_ context.Context, materialID, locationID string) (*entity.StockLocation, error) {
	loc := r.store.findLocation(materialID, locationID)
	if loc != nil {
		r.store.recordLock(loc.ID)
	}
	return loc, nil
}

func (r *memStockRepo) GetByIDForUpdate(_ context.Context, id string) (*entity.StockLocation, error) {
	for _, l := range r.store.locations {
		if l.ID == id {
			r.store.recordLock(l.ID)
			return l, nil
		}
	}
	return nil, nil
}

func (r *memStockRepo) GetOrCreateForUpdate(_ context.Context, materialID, locationID string) (*entity.StockLocation, error) {
	if loc := r.store.findLocation(materialID, locationID); loc != nil {
		r.store.recordLock(loc.ID)
		return loc, nil
	}
	now := time.Now()
	loc := &entity.StockLocation{
		ID:           uuid.New().String(),
		MaterialID:   materialID,
		LocationID:   locationID,
		AvailableQty: decimal.Zero,
		ReservedQty:  decimal.Zero,
		LastUnitCost: decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.store.locations = append(r.store.locations, loc)
	r.store.recordLock(loc.ID)
	return loc, nil
}

func (r *memStockRepo) ListForUpdateByMaterial(_ context.Context, materialID string) ([]*entity.StockLocation, error) {
	var list []*entity.StockLocation
	for _, l := range r.store.locations {
		if l.MaterialID == materialID && l.AvailableQty.IsPositive() {
			list = append(list, l)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	for _, l := range list {
		r.store.recordLock(l.ID)
	}
	return list, nil
}

func (r *memStockRepo) Update(_ context.Context, loc *entity.StockLocation) error {
	for _, l := range r.store.locations {
		if l.ID == loc.ID {
			*l = *loc
			return nil
		}
	}
	return fmt.Errorf("update stock location: fila %s no encontrada", loc.ID)
}

func (r *memStockRepo) ResolveDefaultLocation(_ context.Context, materialID string) (string, error) {
	var best *entity.StockLocation
	for _, l := range r.store.locations {
		if l.MaterialID != materialID {
			continue
		}
		if best == nil {
			best = l
			continue
		}
		if l.TotalQty().GreaterThan(best.TotalQty()) ||
			(l.TotalQty().Equal(best.TotalQty()) && l.ID < best.ID) {
			best = l
		}
	}
	if best == nil {
		return "", nil
	}
	return best.LocationID, nil
}

// ── AssignmentRepository ──

type memAssignmentRepo struct{ store *memStore }

func (r *memAssignmentRepo) Create(_ context.Context, asg *entity.Assignment) error {
	cp := *asg
	r.store.assignments = append(r.store.assignments, &cp)
	return nil
}

func (r *memAssignmentRepo) GetByID(_ context.Context, id string) (*entity.Assignment, error) {
	for _, a := range r.store.assignments {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *memAssignmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Assignment, error) {
	return r.GetByID(ctx, id)
}

func (r *memAssignmentRepo) Update(_ context.Context, asg *entity.Assignment) error {
	for _, a := range r.store.assignments {
		if a.ID == asg.ID {
			*a = *asg
			return nil
		}
	}
	return fmt.Errorf("update assignment: fila %s no encontrada", asg.ID)
}

// ── MovementRepository ──

type memMovementRepo struct{ store *memStore }

func (r *memMovementRepo) Create(_ context.Context, mov *entity.Movement) error {
	if !mov.Qty.IsPositive() || mov.Kind == "" {
		return domain.ErrInvalidInput
	}
	if mov.ID == "" {
		mov.ID = uuid.New().String()
	}
	// Índice único parcial: a lo sumo una reversión ACTIVE por movimiento
	if mov.ReversesMovementID != nil {
		for _, m := range r.store.movements {
			if m.IsReversal() && *m.ReversesMovementID == *mov.ReversesMovementID && m.IsActive() {
				return domain.ErrAlreadyReversed
			}
		}
	}
	cp := *mov
	r.store.movements = append(r.store.movements, &cp)
	return nil
}

func (r *memMovementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	for _, m := range r.store.movements {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (r *memMovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.Movement, error) {
	return r.GetByID(ctx, id)
}

func (r *memMovementRepo) HasActiveReversal(_ context.Context, id string) (bool, error) {
	for _, m := range r.store.movements {
		if m.IsReversal() && *m.ReversesMovementID == id && m.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (r *memMovementRepo) Void(_ context.Context, id, voidedBy, reason string, at time.Time) error {
	for _, m := range r.store.movements {
		if m.ID == id {
			if !m.IsActive() {
				return domain.ErrAlreadyVoided
			}
			m.Status = entity.MovementStatusVoided
			m.VoidedAt = &at
			m.VoidedBy = &voidedBy
			m.VoidReason = &reason
			return nil
		}
	}
	return domain.ErrAlreadyVoided
}

func (r *memMovementRepo) Search(_ context.Context, filter repository.KardexFilter, limit, offset int) ([]*entity.Movement, int, error) {
	var matched []*entity.Movement
	for _, m := range r.store.movements {
		if !filter.IncludeVoided && !m.IsActive() {
			continue
		}
		if filter.MaterialID != nil && m.MaterialID != *filter.MaterialID {
			continue
		}
		if filter.LocationID != nil && m.LocationID != *filter.LocationID {
			continue
		}
		if filter.Kind != nil && m.Kind != *filter.Kind {
			continue
		}
		if filter.ProjectID != nil {
			origin := m.OriginProjectID != nil && *m.OriginProjectID == *filter.ProjectID
			dest := m.DestProjectID != nil && *m.DestProjectID == *filter.ProjectID
			if !origin && !dest {
				continue
			}
		}
		if filter.DateFrom != nil && m.Timestamp.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && m.Timestamp.After(*filter.DateTo) {
			continue
		}
		matched = append(matched, m)
	}
	total := len(matched)
	// Orden de kardex: más recientes primero (aquí, orden inverso de inserción)
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

// ── WarehouseRepository ──

type memWarehouseRepo struct{ store *memStore }

func (r *memWarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	for _, w := range r.store.warehouses {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, nil
}

func (r *memWarehouseRepo) FirstRegistered(_ context.Context) (*entity.Warehouse, error) {
	if len(r.store.warehouses) == 0 {
		return nil, nil
	}
	return r.store.warehouses[0], nil
}

func (r *memWarehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	if offset >= len(r.store.warehouses) {
		return nil, nil
	}
	list := r.store.warehouses[offset:]
	if limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture y helpers
// ──────────────────────────────────────────────────────────────────────────────

const (
	actorAdmin   = "00000000-0000-0000-0000-0000000000aa"
	actorBodega  = "00000000-0000-0000-0000-0000000000bb"
	materialA    = "11111111-0000-0000-0000-000000000001"
	materialB    = "11111111-0000-0000-0000-000000000002"
	warehouseUno = "22222222-0000-0000-0000-000000000001"
	warehouseDos = "22222222-0000-0000-0000-000000000002"
	projectP     = "33333333-0000-0000-0000-000000000001"
	projectQ     = "33333333-0000-0000-0000-000000000002"
	siteS        = "44444444-0000-0000-0000-000000000001"
)

type fixture struct {
	store *memStore
	uc    *ledger.LedgerUseCase
}

func newFixture() *fixture {
	store := &memStore{
		warehouses: []*entity.Warehouse{
			{ID: warehouseUno, Name: "Bodega Central", CreatedAt: time.Now().Add(-48 * time.Hour)},
			{ID: warehouseDos, Name: "Bodega Norte", CreatedAt: time.Now().Add(-24 * time.Hour)},
		},
	}
	uc := ledger.NewLedgerUseCase(
		&memTxRunner{store: store},
		&memWarehouseRepo{store: store},
		&memMovementRepo{store: store},
		&memStockRepo{store: store},
	)
	return &fixture{store: store, uc: uc}
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

// seedStock registra material vía ajuste privilegiado (entrada con precio),
// de modo que el estado inicial también quede respaldado por movimientos.
func (f *fixture) seedStock(materialID, locationID, qty, cost, currency string) {
	_, err := f.uc.Adjust(context.Background(), ledger.AdjustInput{
		Items: []ledger.AdjustmentItem{{
			MaterialID:  materialID,
			Delta:       d(qty),
			LocationID:  locationID,
			Notes:       "carga inicial",
			NewUnitCost: decPtr(cost),
			NewCurrency: strPtr(currency),
		}},
		ActorID:      actorAdmin,
		IsPrivileged: true,
	})
	if err != nil {
		panic("seedStock: " + err.Error())
	}
}

// derivedBalance reconstruye el saldo total de (material, bodega) sumando el
// efecto de todos los movimientos. Un original anulado y su reversión se
// cancelan entre sí, así que la suma sobre todas las filas es el saldo físico.
func (f *fixture) derivedBalance(materialID, locationID string) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range f.store.movements {
		if m.MaterialID == materialID && m.LocationID == locationID {
			sum = sum.Add(m.SignedEffect())
		}
	}
	return sum
}

// movementCount cuenta movimientos registrados.
func (f *fixture) movementCount() int { return len(f.store.movements) }
