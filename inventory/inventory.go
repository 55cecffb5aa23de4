package inventory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sheet is the narrow row API the inventory operations need. Rows returns the
// sheet contents including the header row; row indexes passed to Update are
// 1-based sheet rows.
type Sheet interface {
	Rows(ctx context.Context, tab string) ([][]string, error)
	Update(ctx context.Context, tab string, row int, values []string) error
	Append(ctx context.Context, tab string, values []string) error
}

// Movement kinds as recorded in the movement-log tab.
const (
	KindInbound    = "Entrada"
	KindOutbound   = "Saída"
	KindAdjustment = "Ajuste"
)

const timestampLayout = "02/01/2006 15:04:05"

type Balance struct {
	Found    bool
	Name     string
	Quantity int
}

type DeltaResult struct {
	Name       string
	NewBalance int
	Kind       string
	Created    bool
}

// Service runs the stock operations against two logical tabs: the stock table
// and the append-only movement log.
type Service struct {
	Sheet       Sheet
	StockTab    string
	MovementTab string
	Loc         *time.Location
	Now         func() time.Time
}

func NewService(sheet Sheet, stockTab, movementTab string, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		Sheet:       sheet,
		StockTab:    stockTab,
		MovementTab: movementTab,
		Loc:         loc,
		Now:         time.Now,
	}
}

func (s *Service) timestamp() string {
	return s.Now().In(s.Loc).Format(timestampLayout)
}

// GetBalance returns the first stock row whose product name contains the query,
// case-insensitively. First match wins; overlapping product names are not
// disambiguated.
func (s *Service) GetBalance(ctx context.Context, product string) (Balance, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return Balance{}, fmt.Errorf("produto is required")
	}
	_, row, err := s.findStockRow(ctx, product)
	if err != nil {
		return Balance{}, err
	}
	if row == nil {
		return Balance{}, nil
	}
	return Balance{Found: true, Name: row.name, Quantity: row.quantity}, nil
}

// ApplyDelta adjusts a product's balance and appends one movement-log row.
// Inbound action synonyms add the quantity, outbound synonyms subtract it, and
// any other action applies the (possibly negative) quantity as a raw
// adjustment. An unmatched product appends a new stock row seeded with the
// quantity. The stock write and the log append are two separate remote calls
// with no transaction between them; a failure after the first leaves the log
// behind the stock table.
func (s *Service) ApplyDelta(ctx context.Context, product string, quantity int, action, responsible, note string) (DeltaResult, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return DeltaResult{}, fmt.Errorf("produto is required")
	}

	kind, delta := classifyAction(action, quantity)
	ts := s.timestamp()

	_, row, err := s.findStockRow(ctx, product)
	if err != nil {
		return DeltaResult{}, err
	}

	res := DeltaResult{Kind: kind}
	if row == nil {
		res.Name = product
		res.NewBalance = quantity
		res.Created = true
		if err := s.Sheet.Append(ctx, s.StockTab, []string{product, strconv.Itoa(quantity), ts}); err != nil {
			return DeltaResult{}, fmt.Errorf("append stock row: %w", err)
		}
	} else {
		res.Name = row.name
		res.NewBalance = row.quantity + delta
		update := []string{row.name, strconv.Itoa(res.NewBalance), ts}
		if err := s.Sheet.Update(ctx, s.StockTab, row.index, update); err != nil {
			return DeltaResult{}, fmt.Errorf("update stock row: %w", err)
		}
	}

	if err := s.appendMovement(ctx, ts, res.Name, quantity, kind, responsible, note); err != nil {
		return res, fmt.Errorf("append movement row: %w", err)
	}
	return res, nil
}

// LogMovement appends one audit row without touching the stock table.
func (s *Service) LogMovement(ctx context.Context, product string, quantity int, kind, responsible, note string) error {
	product = strings.TrimSpace(product)
	if product == "" {
		return fmt.Errorf("produto is required")
	}
	kind = strings.TrimSpace(kind)
	if kind == "" {
		kind = KindAdjustment
	}
	return s.appendMovement(ctx, s.timestamp(), product, quantity, kind, responsible, note)
}

func (s *Service) appendMovement(ctx context.Context, ts, product string, quantity int, kind, responsible, note string) error {
	return s.Sheet.Append(ctx, s.MovementTab, []string{
		ts,
		product,
		strconv.Itoa(quantity),
		kind,
		strings.TrimSpace(responsible),
		strings.TrimSpace(note),
	})
}

type stockRow struct {
	index    int // 1-based sheet row
	name     string
	quantity int
}

func (s *Service) findStockRow(ctx context.Context, query string) ([][]string, *stockRow, error) {
	rows, err := s.Sheet.Rows(ctx, s.StockTab)
	if err != nil {
		return nil, nil, fmt.Errorf("read stock tab %q: %w", s.StockTab, err)
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue // header
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(name), needle) {
			continue
		}
		qty := 0
		if len(row) > 1 {
			qty, _ = strconv.Atoi(strings.TrimSpace(row[1]))
		}
		return rows, &stockRow{index: i + 1, name: name, quantity: qty}, nil
	}
	return rows, nil, nil
}

var (
	inboundActions  = []string{"compra", "comprei", "entrada", "in", "+"}
	outboundActions = []string{"venda", "vendi", "saida", "saída", "out", "-"}
)

// classifyAction maps an action string onto a movement kind and a signed
// delta. Unknown actions are raw adjustments: the quantity is added as-is.
func classifyAction(action string, quantity int) (string, int) {
	a := strings.ToLower(strings.TrimSpace(action))
	for _, syn := range inboundActions {
		if a == syn {
			return KindInbound, quantity
		}
	}
	for _, syn := range outboundActions {
		if a == syn {
			return KindOutbound, -quantity
		}
	}
	return KindAdjustment, quantity
}
