package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	mainmodel "donation-settle-api/internal/model/main"
	ordermodel "donation-settle-api/internal/model/order"
	"donation-settle-api/internal/settlement"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type seqIDs struct{ n uint64 }

func (s *seqIDs) Next() uint64 {
	s.n++
	return 1000 + s.n
}

// memStore is an in-memory stand-in for MainDao and OrderDao.
type memStore struct {
	mu            sync.Mutex
	orgs          map[uint64]*mainmodel.Organization
	connections   map[uint64]*mainmodel.Connection
	proposals     map[uint64]*mainmodel.SplitProposal
	distributions map[uint64]*mainmodel.DistributionConfig
	donations     []*ordermodel.Donation
	writes        int
	failDonation  error
}

func newMemStore() *memStore {
	return &memStore{
		orgs:          map[uint64]*mainmodel.Organization{},
		connections:   map[uint64]*mainmodel.Connection{},
		proposals:     map[uint64]*mainmodel.SplitProposal{},
		distributions: map[uint64]*mainmodel.DistributionConfig{},
	}
}

func (m *memStore) GetOrganization(_ context.Context, id uint64) (*mainmodel.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orgs[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) GetConnection(_ context.Context, id uint64) (*mainmodel.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.connections[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) CreateProposal(_ context.Context, p *mainmodel.SplitProposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.proposals[p.ProposalID] = &cp
	m.writes++
	return nil
}

func (m *memStore) GetProposal(_ context.Context, id uint64) (*mainmodel.SplitProposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.proposals[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) ResolveProposal(_ context.Context, id uint64, status, userID string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok || p.Status != mainmodel.SplitProposed {
		return false, nil
	}
	p.Status, p.ResolvedBy, p.ResolvedAt = status, userID, &at
	m.writes++
	return true, nil
}

func (m *memStore) ListProposalsByOrg(_ context.Context, orgID uint64) ([]mainmodel.SplitProposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []mainmodel.SplitProposal
	for _, p := range m.proposals {
		if p.Involves(orgID) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) GetDistribution(_ context.Context, orgID uint64) (*mainmodel.DistributionConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.distributions[orgID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) ReplaceDistribution(_ context.Context, cfg *mainmodel.DistributionConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.distributions[cfg.OrgID]; ok {
		cfg.ConfigID = old.ConfigID
	}
	cp := *cfg
	cp.Entries = append([]mainmodel.DistributionEntry(nil), cfg.Entries...)
	m.distributions[cfg.OrgID] = &cp
	m.writes++
	return nil
}

func (m *memStore) CreateDonation(_ context.Context, d *ordermodel.Donation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDonation != nil {
		return m.failDonation
	}
	cp := *d
	m.donations = append(m.donations, &cp)
	m.writes++
	return nil
}

type fakeGuard struct {
	held     map[string]bool
	err      error
	released []string
}

func newFakeGuard() *fakeGuard { return &fakeGuard{held: map[string]bool{}} }

func (g *fakeGuard) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	return true, nil
}

func (g *fakeGuard) Release(_ context.Context, key string) error {
	delete(g.held, key)
	g.released = append(g.released, key)
	return nil
}

type fakeCapture struct {
	calls []*settlement.CaptureRequest
	keys  []string
	err   error
}

func (f *fakeCapture) Capture(_ context.Context, key string, req *settlement.CaptureRequest) (*CaptureResult, error) {
	f.calls = append(f.calls, req)
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	return &CaptureResult{PaymentRef: "pi_" + key, Status: "requires_payment_method", ClientSecret: "secret_" + key}, nil
}

type published struct {
	topic string
	msg   any
}

type recordingPublisher struct {
	events []published
	err    error
}

func (p *recordingPublisher) Publish(topic string, msg any) error {
	p.events = append(p.events, published{topic, msg})
	return p.err
}

type recordingAlerter struct{ titles []string }

func (a *recordingAlerter) Alert(_, title string, _ map[string]string) {
	a.titles = append(a.titles, title)
}

var errStoreDown = errors.New("store down")
