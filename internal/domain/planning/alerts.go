// internal/domain/planning/alerts.go
package planning

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	alertCacheKey = "planning:reorder_alerts"
	alertCacheTTL = 5 * time.Minute
)

// ReorderAlert is one material at or below its reorder point
type ReorderAlert struct {
	MaterialID        uint             `json:"material_id"`
	MaterialName      string           `json:"material_name"`
	CurrentStock      decimal.Decimal  `json:"current_stock"`
	SafetyStock       decimal.Decimal  `json:"safety_stock"`
	ROP               decimal.Decimal  `json:"rop"`
	DailyUsage        decimal.Decimal  `json:"daily_usage"`
	LeadTimeDays      int              `json:"lead_time_days"`
	DaysUntilStockout *decimal.Decimal `json:"days_until_stockout,omitempty"`
	Priority          int              `json:"priority"`
	Supplier          string           `json:"supplier"`
	SuggestedOrderQty decimal.Decimal  `json:"suggested_order_qty"`
}

// AlertSummary is the dashboard digest of the alert list
type AlertSummary struct {
	TotalAlerts         int             `json:"total_alerts"`
	CriticalCount       int             `json:"critical_count"`
	UrgentCount         int             `json:"urgent_count"`
	TopPriority         []ReorderAlert  `json:"top_priority"`
	EstimatedOrderValue decimal.Decimal `json:"estimated_order_value"`
}

// SupplierAlerts groups alerts for one supplier so orders can be bundled
type SupplierAlerts struct {
	Supplier   string         `json:"supplier"`
	Materials  []ReorderAlert `json:"materials"`
	TotalItems int            `json:"total_items"`
}

// Notifier delivers reorder alerts out of band. Delivery failures are
// logged and swallowed: alerting never blocks or fails a stock operation.
type Notifier interface {
	SendReorderAlerts(alerts []ReorderAlert) error
}

// WithCache attaches a redis client used to cache alert computations
func (s *Service) WithCache(cache *redis.Client) *Service {
	s.cache = cache
	return s
}

// WithNotifier attaches an out-of-band alert notifier
func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

// GetReorderAlerts lists every material at or below its reorder point,
// sorted by priority. Served from cache when fresh; the computation walks
// the whole catalog and is advisory, so a few minutes of staleness is fine.
func (s *Service) GetReorderAlerts(ctx context.Context) ([]ReorderAlert, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, alertCacheKey).Result(); err == nil {
			var alerts []ReorderAlert
			if err := json.Unmarshal([]byte(cached), &alerts); err == nil {
				return alerts, nil
			}
		}
	}

	alerts, err := s.computeReorderAlerts()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(alerts); err == nil {
			if err := s.cache.Set(ctx, alertCacheKey, payload, alertCacheTTL).Err(); err != nil {
				s.logAdvisoryFailure("cache reorder alerts", err)
			}
		}
	}

	return alerts, nil
}

func (s *Service) computeReorderAlerts() ([]ReorderAlert, error) {
	materials, err := s.materials.GetAll()
	if err != nil {
		return nil, err
	}

	alerts := make([]ReorderAlert, 0)
	for i := range materials {
		m := &materials[i]

		usage, err := s.materials.DailyUsage(m.ID, UsageWindowDays)
		if err != nil {
			return nil, err
		}
		rop := s.rop(m, usage)
		if m.Stock.Cmp(rop) > 0 {
			continue
		}

		var daysUntilStockout *decimal.Decimal
		var daysFloat *float64
		if usage.Sign() > 0 {
			d := m.Stock.Div(usage)
			daysUntilStockout = &d
			f := d.InexactFloat64()
			daysFloat = &f
		}

		priority := PriorityScore(
			m.Stock.InexactFloat64(),
			m.SafetyStock.InexactFloat64(),
			rop.InexactFloat64(),
			usage.InexactFloat64(),
			daysFloat,
		)

		orderQty := SuggestedOrderQty(
			usage.InexactFloat64(),
			m.LeadTimeDays,
			m.SafetyStock.InexactFloat64(),
			m.Stock.InexactFloat64(),
		)

		alerts = append(alerts, ReorderAlert{
			MaterialID:        m.ID,
			MaterialName:      m.Name,
			CurrentStock:      m.Stock,
			SafetyStock:       m.SafetyStock,
			ROP:               rop,
			DailyUsage:        usage.Round(2),
			LeadTimeDays:      m.LeadTimeDays,
			DaysUntilStockout: daysUntilStockout,
			Priority:          priority,
			Supplier:          m.Supplier,
			SuggestedOrderQty: decimal.NewFromFloat(orderQty).Round(2),
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Priority > alerts[j].Priority
	})
	return alerts, nil
}

// GetAlertSummary condenses the alert list for a dashboard card
func (s *Service) GetAlertSummary(ctx context.Context) (*AlertSummary, error) {
	alerts, err := s.GetReorderAlerts(ctx)
	if err != nil {
		return nil, err
	}

	summary := &AlertSummary{
		TotalAlerts:         len(alerts),
		EstimatedOrderValue: decimal.Zero,
	}

	urgencyCutoff := decimal.NewFromInt(3)
	for _, a := range alerts {
		if a.CurrentStock.Cmp(a.SafetyStock) <= 0 {
			summary.CriticalCount++
		}
		if a.DaysUntilStockout != nil && a.DaysUntilStockout.Cmp(urgencyCutoff) <= 0 {
			summary.UrgentCount++
		}

		m, err := s.materials.Get(a.MaterialID)
		if err == nil {
			summary.EstimatedOrderValue = summary.EstimatedOrderValue.
				Add(a.SuggestedOrderQty.Mul(m.UnitPrice))
		}
	}
	summary.EstimatedOrderValue = summary.EstimatedOrderValue.Round(2)

	top := len(alerts)
	if top > 5 {
		top = 5
	}
	summary.TopPriority = alerts[:top]

	return summary, nil
}

// GetAlertsBySupplier groups the alert list by supplier
func (s *Service) GetAlertsBySupplier(ctx context.Context) ([]SupplierAlerts, error) {
	alerts, err := s.GetReorderAlerts(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string]*SupplierAlerts)
	order := make([]string, 0)
	for _, a := range alerts {
		supplier := a.Supplier
		if supplier == "" {
			supplier = "unknown"
		}
		g, ok := grouped[supplier]
		if !ok {
			g = &SupplierAlerts{Supplier: supplier}
			grouped[supplier] = g
			order = append(order, supplier)
		}
		g.Materials = append(g.Materials, a)
		g.TotalItems++
	}

	result := make([]SupplierAlerts, 0, len(order))
	for _, supplier := range order {
		result = append(result, *grouped[supplier])
	}
	return result, nil
}

// CheckAndNotifyAsync re-evaluates one material after a stock change and
// sends an alert when it fell to or below its reorder point. Runs in the
// background; any failure is advisory.
func (s *Service) CheckAndNotifyAsync(materialID uint) {
	if s.notifier == nil {
		return
	}

	go func() {
		details, err := s.GetROPDetails(materialID)
		if err != nil {
			s.logAdvisoryFailure("rop check after stock change", err)
			return
		}
		if !details.NeedsRestock {
			return
		}

		alert := ReorderAlert{
			MaterialID:        details.MaterialID,
			MaterialName:      details.MaterialName,
			CurrentStock:      details.CurrentStock,
			SafetyStock:       details.SafetyStock,
			ROP:               details.ROP,
			DailyUsage:        details.DailyUsage,
			LeadTimeDays:      details.LeadTimeDays,
			DaysUntilStockout: details.DaysUntilStockout,
		}
		if err := s.notifier.SendReorderAlerts([]ReorderAlert{alert}); err != nil {
			s.logAdvisoryFailure("reorder alert notification", err)
		}

		if s.cache != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := s.cache.Del(ctx, alertCacheKey).Err(); err != nil {
				s.logAdvisoryFailure("alert cache invalidation", err)
			}
		}
	}()
}
