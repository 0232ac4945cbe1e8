// Package gnb resolves the link between the switch and the gNB. The link is
// described once per installation and reused by every standard route.
package gnb

import (
	"context"
	"fmt"

	"github.com/akam1o/tna-routegen/pkg/datastore"
	"github.com/akam1o/tna-routegen/pkg/errors"
	"github.com/akam1o/tna-routegen/pkg/logger"
	"github.com/akam1o/tna-routegen/pkg/netid"
	"github.com/akam1o/tna-routegen/pkg/prompt"
)

// Questions asked when no link configuration exists.
const (
	QuestionPort      = "What port is the gNB connected to ? Please provide a full port ID [port number][channel number] (take a look at stratum.log to see what ports are up)"
	QuestionGnbMAC    = "What mac address does the gnb use on the interface connected to the switch ?"
	QuestionSwitchMAC = "What mac address should the switch use on this connection ?"
	QuestionGnbIP     = "What IP does the gnb use on this interface ? (ip/32)"

	missingNotice = "No config file was found for the gnb, please provide the following information:"
)

// LinkConfig is the validated gNB link configuration.
type LinkConfig struct {
	Port      netid.PortID
	GnbMAC    netid.MAC
	SwitchMAC netid.MAC
	GnbIP     netid.IPWithMask
}

// Summary renders the confirmation block printed at the start of a session.
func (c *LinkConfig) Summary() string {
	return fmt.Sprintf("GNB connected to port %s.\nThe mac addresses used on this link are gnb:%s switch:%s\nIP address used by the gnb: %s",
		c.Port.Human(), c.GnbMAC, c.SwitchMAC, c.GnbIP)
}

// ToRecord converts the config to its persisted form.
func (c *LinkConfig) ToRecord() *datastore.LinkRecord {
	return &datastore.LinkRecord{
		Port:      c.Port.ID,
		GnbMAC:    c.GnbMAC.String(),
		SwitchMAC: c.SwitchMAC.String(),
		GnbIP:     c.GnbIP.String(),
	}
}

// FromRecord validates a persisted record. A record edited by hand into an
// invalid state is reported instead of being used.
func FromRecord(rec *datastore.LinkRecord) (*LinkConfig, error) {
	port, err := netid.PortFromID(rec.Port)
	if err != nil {
		return nil, invalidRecord(err)
	}
	gnbMAC, err := netid.ValidateMAC(rec.GnbMAC)
	if err != nil {
		return nil, invalidRecord(err)
	}
	switchMAC, err := netid.ValidateMAC(rec.SwitchMAC)
	if err != nil {
		return nil, invalidRecord(err)
	}
	gnbIP, err := netid.ValidateIPWithMask(rec.GnbIP)
	if err != nil {
		return nil, invalidRecord(err)
	}
	return &LinkConfig{Port: port, GnbMAC: gnbMAC, SwitchMAC: switchMAC, GnbIP: gnbIP}, nil
}

func invalidRecord(err error) error {
	return errors.Wrap(err, errors.ErrCodeConfigValidation,
		"Stored gNB link configuration is invalid",
		err.Error(),
		"Run 'tna-routegen gnb reset' and describe the link again")
}

// Store is the part of the datastore the resolver needs.
type Store interface {
	GetLinkConfig(ctx context.Context) (*datastore.LinkRecord, error)
	PutLinkConfig(ctx context.Context, rec *datastore.LinkRecord) error
	DeleteLinkConfig(ctx context.Context) error
}

// Recorder receives link configuration audit events.
type Recorder interface {
	LinkConfigCreated(ctx context.Context, rec *datastore.LinkRecord) error
	LinkConfigReset(ctx context.Context) error
}

// Resolver loads the link configuration, asking the operator for it the
// first time.
type Resolver struct {
	store    Store
	prompter prompt.Prompter
	recorder Recorder
	onRetry  func(field string, err error)
	log      *logger.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRecorder records creation and reset events.
func WithRecorder(r Recorder) Option {
	return func(res *Resolver) { res.recorder = r }
}

// WithRetryHook is called with the field name of every rejected answer.
func WithRetryHook(fn func(field string, err error)) Option {
	return func(res *Resolver) { res.onRetry = fn }
}

// NewResolver creates a resolver. prompter may be nil when only stored
// configuration should be used.
func NewResolver(store Store, prompter prompt.Prompter, log *logger.Logger, opts ...Option) *Resolver {
	if log == nil {
		log = logger.Discard()
	}
	r := &Resolver{store: store, prompter: prompter, log: log}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Load returns the stored configuration without prompting.
func (r *Resolver) Load(ctx context.Context) (*LinkConfig, error) {
	rec, err := r.store.GetLinkConfig(ctx)
	if err != nil {
		return nil, err
	}
	return FromRecord(rec)
}

// Resolve returns the stored configuration, collecting and persisting it
// when none exists. prompt.ErrAbort is returned if the operator gives up,
// and nothing is persisted in that case.
func (r *Resolver) Resolve(ctx context.Context) (*LinkConfig, error) {
	cfg, err := r.Load(ctx)
	if err == nil {
		return cfg, nil
	}
	if !datastore.IsNotFound(err) {
		return nil, err
	}
	if r.prompter == nil {
		return nil, err
	}

	r.log.Info("No gNB link configuration stored, collecting it")
	r.prompter.Println(missingNotice)

	cfg, err = r.collect()
	if err != nil {
		return nil, err
	}

	rec := cfg.ToRecord()
	if err := r.store.PutLinkConfig(ctx, rec); err != nil {
		return nil, err
	}
	r.log.WithField("port", cfg.Port.Human()).Info("Stored gNB link configuration")

	if r.recorder != nil {
		if err := r.recorder.LinkConfigCreated(ctx, rec); err != nil {
			r.log.WithField("error", err).Warn("Failed to audit link configuration")
		}
	}
	return cfg, nil
}

// Reset deletes the stored configuration so the next Resolve asks again.
func (r *Resolver) Reset(ctx context.Context) error {
	if err := r.store.DeleteLinkConfig(ctx); err != nil {
		return err
	}
	r.log.Info("Deleted gNB link configuration")

	if r.recorder != nil {
		if err := r.recorder.LinkConfigReset(ctx); err != nil {
			r.log.WithField("error", err).Warn("Failed to audit link configuration reset")
		}
	}
	return nil
}

func (r *Resolver) collect() (*LinkConfig, error) {
	port, err := prompt.Validated(r.prompter, QuestionPort, netid.ValidatePort,
		r.retry(netid.FieldPort, "Please enter a valid port number:"))
	if err != nil {
		return nil, err
	}

	gnbMAC, err := prompt.Validated(r.prompter, QuestionGnbMAC, netid.ValidateMAC,
		r.retry(netid.FieldMAC, "Please enter a valid mac address"))
	if err != nil {
		return nil, err
	}

	switchMAC, err := prompt.Validated(r.prompter, QuestionSwitchMAC, netid.ValidateMAC,
		r.retry(netid.FieldMAC, "Please enter a valid mac address"))
	if err != nil {
		return nil, err
	}

	gnbIP, err := prompt.Validated(r.prompter, QuestionGnbIP, netid.ValidateIPWithMask,
		r.retry(netid.FieldIP, "Please enter a valid IP address:"))
	if err != nil {
		return nil, err
	}

	return &LinkConfig{Port: port, GnbMAC: gnbMAC, SwitchMAC: switchMAC, GnbIP: gnbIP}, nil
}

func (r *Resolver) retry(field, message string) prompt.RetryHook {
	return func(err error) {
		r.prompter.Println(message, reason(err))
		if r.onRetry != nil {
			r.onRetry(field, err)
		}
	}
}

// reason returns the operator-facing part of a validation error.
func reason(err error) string {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
