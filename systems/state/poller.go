package state

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/go-home-io/wled-effects/utils"
	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

const (
	// Home Assistant states endpoint.
	endpointStates = "/api/states"

	// DefaultPollInterval is the default states refresh interval.
	DefaultPollInterval = 5 * time.Second
)

// ConstructPoller has data required for a new Home Assistant poller.
type ConstructPoller struct {
	Logger     common.ILoggerProvider
	Store      providers.IStateProvider
	Cron       providers.ICronProvider
	URL        string
	Token      string
	Entities   []string
	Interval   time.Duration
	HTTPClient *http.Client
}

// Home Assistant entity as returned by REST API.
type haEntity struct {
	EntityID   string                 `json:"entity_id"`
	State      interface{}            `json:"state"`
	Attributes map[string]interface{} `json:"attributes"`
}

// Home Assistant REST poller implementation.
type poller struct {
	sync.Mutex

	logger   common.ILoggerProvider
	store    providers.IStateProvider
	cron     providers.ICronProvider
	url      string
	token    string
	filters  []glob.Glob
	interval time.Duration
	http     *http.Client
	cronID   int
	started  bool
}

// NewPoller constructs a new Home Assistant REST poller.
func NewPoller(ctor *ConstructPoller) (providers.IStatePollerProvider, error) {
	p := &poller{
		logger:   ctor.Logger,
		store:    ctor.Store,
		cron:     ctor.Cron,
		url:      strings.TrimSuffix(ctor.URL, "/"),
		token:    ctor.Token,
		interval: ctor.Interval,
		http:     ctor.HTTPClient,
		filters:  make([]glob.Glob, 0),
	}

	if "" == p.url {
		return nil, &common.ErrConfiguration{Message: "state poller url is empty"}
	}

	if p.interval <= 0 {
		p.interval = DefaultPollInterval
	}

	if nil == p.http {
		p.http = &http.Client{Timeout: 10 * time.Second}
	}

	for _, v := range ctor.Entities {
		g, err := glob.Compile(v)
		if err != nil {
			return nil, &common.ErrConfiguration{Message: fmt.Sprintf("wrong entity pattern %s", v)}
		}

		p.filters = append(p.filters, g)
	}

	return p, nil
}

// Start loads states and schedules periodic refresh.
func (p *poller) Start() error {
	p.Lock()
	defer p.Unlock()

	if p.started {
		return nil
	}

	if err := p.PollOnce(context.Background()); err != nil {
		p.logger.Warn(fmt.Sprintf("Initial state load failed: %s", err.Error()),
			common.LogSystemToken, logSystem, common.LogURLToken, p.url)
	}

	id, err := p.cron.AddFunc(utils.EverySpec(p.interval), func() {
		if err := p.PollOnce(context.Background()); err != nil {
			p.logger.Error("Failed to poll states", err, common.LogSystemToken, logSystem,
				common.LogURLToken, p.url)
		}
	})

	if err != nil {
		return errors.Wrap(err, "failed to schedule state poller")
	}

	p.cronID = id
	p.started = true
	p.logger.Info("State poller started", common.LogSystemToken, logSystem, common.LogURLToken, p.url)
	return nil
}

// Stop cancels periodic refresh.
func (p *poller) Stop() {
	p.Lock()
	defer p.Unlock()

	if !p.started {
		return
	}

	p.cron.RemoveFunc(p.cronID)
	p.started = false
}

// PollOnce loads all states and updates matching entities.
func (p *poller) PollOnce(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url+endpointStates, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("Content-Type", "application/json")
	if "" != p.token {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}

	defer resp.Body.Close() // nolint: errcheck
	if resp.StatusCode != http.StatusOK {
		return &common.ErrStateSource{Entity: "*", Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	entities := make([]*haEntity, 0)
	if err := json.Unmarshal(data, &entities); err != nil {
		return errors.Wrap(err, "failed to decode states")
	}

	for _, v := range entities {
		if !p.matches(v.EntityID) {
			continue
		}

		p.store.Set(v.EntityID, v.State, v.Attributes)
	}

	return nil
}

// Checks whether entity is tracked.
func (p *poller) matches(entityID string) bool {
	if 0 == len(p.filters) {
		return true
	}

	for _, v := range p.filters {
		if v.Match(entityID) {
			return true
		}
	}

	return false
}
