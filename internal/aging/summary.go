package aging

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cxc/pkg/models"
)

// UnassignedAgent groups invoices that carry no agent id.
const UnassignedAgent = "UNASSIGNED"

// Summary is the aging position of one agent. It is derived on every fetch
// and never updated in place.
type Summary struct {
	AgentID   string
	AgentName string

	AdeudoTotal   decimal.Decimal
	AdeudoVigente decimal.Decimal
	AdeudoVencido decimal.Decimal

	Invoices        int
	OverdueInvoices int

	BucketCount [NumBuckets]int
	BucketSaldo [NumBuckets]decimal.Decimal
}

func newSummary(agentID, agentName string) *Summary {
	s := &Summary{
		AgentID:       agentID,
		AgentName:     agentName,
		AdeudoTotal:   decimal.Zero,
		AdeudoVigente: decimal.Zero,
		AdeudoVencido: decimal.Zero,
	}
	for i := range s.BucketSaldo {
		s.BucketSaldo[i] = decimal.Zero
	}
	return s
}

// add records one invoice balance in the given bucket.
func (s *Summary) add(saldo decimal.Decimal, b Bucket) {
	s.AdeudoTotal = s.AdeudoTotal.Add(saldo)
	if b.Overdue() {
		s.AdeudoVencido = s.AdeudoVencido.Add(saldo)
		s.OverdueInvoices++
	} else {
		s.AdeudoVigente = s.AdeudoVigente.Add(saldo)
	}
	s.Invoices++
	s.BucketCount[b]++
	s.BucketSaldo[b] = s.BucketSaldo[b].Add(saldo)
}

// merge adds every figure of o into s.
func (s *Summary) merge(o *Summary) {
	s.AdeudoTotal = s.AdeudoTotal.Add(o.AdeudoTotal)
	s.AdeudoVigente = s.AdeudoVigente.Add(o.AdeudoVigente)
	s.AdeudoVencido = s.AdeudoVencido.Add(o.AdeudoVencido)
	s.Invoices += o.Invoices
	s.OverdueInvoices += o.OverdueInvoices
	for i := 0; i < NumBuckets; i++ {
		s.BucketCount[i] += o.BucketCount[i]
		s.BucketSaldo[i] = s.BucketSaldo[i].Add(o.BucketSaldo[i])
	}
}

// Saldo returns the balance held in bucket b.
func (s *Summary) Saldo(b Bucket) decimal.Decimal {
	return s.BucketSaldo[b]
}

// Count returns the number of invoices in bucket b.
func (s *Summary) Count(b Bucket) int {
	return s.BucketCount[b]
}

// Aggregator groups invoices by agent using a Classifier.
type Aggregator struct {
	classifier *Classifier
}

// NewAggregator returns an Aggregator backed by c.
func NewAggregator(c *Classifier) *Aggregator {
	return &Aggregator{classifier: c}
}

// Aggregate builds one Summary per agent. Invoices without an agent id are
// grouped under UnassignedAgent.
func (a *Aggregator) Aggregate(invoices []models.Invoice, today time.Time) map[string]*Summary {
	out := make(map[string]*Summary)

	for _, inv := range invoices {
		agentID := strings.TrimSpace(inv.AgentID)
		if agentID == "" {
			agentID = UnassignedAgent
		}

		s, ok := out[agentID]
		if !ok {
			s = newSummary(agentID, inv.AgentName)
			out[agentID] = s
		}
		if s.AgentName == "" {
			s.AgentName = inv.AgentName
		}

		bucket := a.classifier.Classify(inv.FechaVencimiento.Ptr(), today)
		s.add(inv.Saldo.Decimal, bucket)
	}

	return out
}

// FlattenGroups turns the backend's per-agent groups into one invoice list,
// filling the agent id and name from the group when an invoice lacks them.
func FlattenGroups(groups []models.AgentInvoices) []models.Invoice {
	var invoices []models.Invoice
	for _, g := range groups {
		for _, inv := range g.Invoices {
			if inv.AgentID == "" {
				inv.AgentID = g.AgentID
			}
			if inv.AgentName == "" {
				inv.AgentName = g.AgentName
			}
			invoices = append(invoices, inv)
		}
	}
	return invoices
}

// Report is the full aging table: one row per agent plus grand totals.
type Report struct {
	AsOf   time.Time
	Agents []*Summary
	Totals *Summary
}

// NewReport aggregates invoices and orders agents by overdue balance,
// largest first, then by agent id.
func (a *Aggregator) NewReport(invoices []models.Invoice, today time.Time) *Report {
	byAgent := a.Aggregate(invoices, today)

	agents := make([]*Summary, 0, len(byAgent))
	totals := newSummary("", "TOTAL")
	for _, s := range byAgent {
		agents = append(agents, s)
		totals.merge(s)
	}

	sort.Slice(agents, func(i, j int) bool {
		if c := agents[i].AdeudoVencido.Cmp(agents[j].AdeudoVencido); c != 0 {
			return c > 0
		}
		return agents[i].AgentID < agents[j].AgentID
	})

	return &Report{
		AsOf:   today,
		Agents: agents,
		Totals: totals,
	}
}

// InvoiceAging is a single invoice with its computed aging.
type InvoiceAging struct {
	Invoice     models.Invoice
	DaysOverdue int
	Bucket      Bucket
}

// Detail classifies each invoice individually, most overdue first.
func (a *Aggregator) Detail(invoices []models.Invoice, today time.Time) []InvoiceAging {
	out := make([]InvoiceAging, 0, len(invoices))
	for _, inv := range invoices {
		item := InvoiceAging{Invoice: inv, Bucket: Current}
		if due := inv.FechaVencimiento.Ptr(); due != nil {
			item.DaysOverdue = a.classifier.DaysOverdue(*due, today)
			item.Bucket = BucketForDays(item.DaysOverdue)
		}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysOverdue > out[j].DaysOverdue
	})
	return out
}
