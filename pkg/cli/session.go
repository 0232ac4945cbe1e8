// Package cli runs the interactive route session: collect a route from the
// operator, render its descriptors and persist them, until the operator
// enters a blank answer.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/akam1o/tna-routegen/pkg/audit"
	"github.com/akam1o/tna-routegen/pkg/datastore"
	"github.com/akam1o/tna-routegen/pkg/errors"
	"github.com/akam1o/tna-routegen/pkg/gnb"
	"github.com/akam1o/tna-routegen/pkg/logger"
	"github.com/akam1o/tna-routegen/pkg/metrics"
	"github.com/akam1o/tna-routegen/pkg/netid"
	"github.com/akam1o/tna-routegen/pkg/prompt"
	"github.com/akam1o/tna-routegen/pkg/routegen"
	"github.com/akam1o/tna-routegen/pkg/routeid"
)

// Questions asked for every route.
const (
	QuestionName      = `Please first provide a name for your new route. If you want to generate an INT route, please use the name "int" :`
	QuestionIP        = "What IP address do you want to add ?"
	QuestionPort      = "What port should the message be sent through ? Please provide a full port ID [port number][channel number] (take a look at stratum.log to see what ports are up)"
	QuestionSwitchMAC = "What mac address should be used by the switch on this connection ?"
	QuestionPdnMAC    = "What mac address should the message be sent with to reach the host(s) on your network ?"

	exitHint = "Enter nothing at any point to exit"
)

// Config wires a Session.
type Config struct {
	Datastore     datastore.Datastore
	Prompter      prompt.Prompter
	Generator     *routegen.Generator
	AllocatorMode routeid.Mode
	Backend       string

	// Optional
	Audit   *audit.Logger
	Metrics *metrics.Metrics
	Logger  *logger.Logger
}

// Session is one interactive run of the tool
type Session struct {
	ds        datastore.Datastore
	prompter  prompt.Prompter
	generator *routegen.Generator
	allocator *routeid.Allocator
	resolver  *gnb.Resolver
	audit     *audit.Logger
	metrics   *metrics.Metrics
	log       *logger.Logger
	backend   string

	routes int
}

// NewSession creates a new route session
func NewSession(cfg *Config) *Session {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	auditLog := cfg.Audit
	if auditLog == nil {
		auditLog = audit.NewLogger(cfg.Datastore, log)
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.New()
	}

	s := &Session{
		ds:        cfg.Datastore,
		prompter:  cfg.Prompter,
		generator: cfg.Generator,
		allocator: routeid.NewAllocator(cfg.Datastore, cfg.AllocatorMode),
		audit:     auditLog,
		metrics:   m,
		log:       log.WithField("session", auditLog.SessionID()),
		backend:   cfg.Backend,
	}
	s.resolver = gnb.NewResolver(cfg.Datastore, cfg.Prompter, s.log,
		gnb.WithRecorder(auditLog),
		gnb.WithRetryHook(s.countRejection))
	return s
}

// ID returns the session id used in audit events
func (s *Session) ID() string { return s.audit.SessionID() }

// Routes returns the number of routes generated so far
func (s *Session) Routes() int { return s.routes }

// Run resolves the gNB link and generates routes until the operator aborts.
// An abort is a normal end of session and returns nil.
func (s *Session) Run(ctx context.Context) error {
	s.prompter.Println(exitHint)
	if err := s.audit.SessionCreated(ctx, s.backend); err != nil {
		s.log.WithField("error", err).Warn("Failed to audit session start")
	}

	err := s.run(ctx)
	reason := "operator exit"
	if err != nil {
		reason = err.Error()
	}
	if auditErr := s.audit.SessionTerminated(ctx, s.routes, reason); auditErr != nil {
		s.log.WithField("error", auditErr).Warn("Failed to audit session end")
	}
	return err
}

func (s *Session) run(ctx context.Context) error {
	link, err := s.resolver.Resolve(ctx)
	if err != nil {
		if stderrors.Is(err, prompt.ErrAbort) {
			return nil
		}
		return err
	}
	s.prompter.Println("\n" + link.Summary() + "\n")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		req, err := s.collect()
		if err != nil {
			if stderrors.Is(err, prompt.ErrAbort) {
				s.log.WithField("routes", s.routes).Info("Session ended by operator")
				return nil
			}
			return err
		}

		if _, err := s.CreateRoute(ctx, req, link); err != nil {
			code := errors.ErrCodeSystemError
			var coded *errors.Error
			if errors.As(err, &coded) {
				code = coded.Code
			}
			if auditErr := s.audit.RouteFailed(ctx, req.Name, code, err); auditErr != nil {
				s.log.WithField("error", auditErr).Warn("Failed to audit route failure")
			}
			s.log.ErrorWithCause("Failed to create route", err, causeOf(err), actionOf(err))
			return err
		}
	}
}

// CreateRoute allocates ids for req, renders its descriptors, persists them
// and reports the result to the operator.
func (s *Session) CreateRoute(ctx context.Context, req *routegen.Request, link *gnb.LinkConfig) (*routegen.DescriptorSet, error) {
	nextID := routeid.INTNextHopID
	if !req.IsINT() {
		id, err := s.allocator.Next(ctx)
		if err != nil {
			return nil, err
		}
		nextID = id
		s.warnIfReplacing(ctx, req.Name)
	}

	set, err := s.generator.Generate(req, link, nextID)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, set); err != nil {
		return nil, err
	}

	if err := s.audit.RouteGenerated(ctx, set); err != nil {
		s.log.WithField("error", err).Warn("Failed to audit generated route")
	}
	s.metrics.RoutesGenerated.WithLabelValues(string(set.Topology)).Inc()
	if next, err := s.allocator.Next(ctx); err == nil {
		s.metrics.NextHopID.Set(float64(next))
	}
	s.routes++

	s.log.WithField("route", set.Route).
		WithField("topology", set.Topology).
		WithField("next_id", set.UplinkID).
		Info("Route descriptors written")

	s.prompter.Println(ReportLine(req))
	return set, nil
}

// ReportLine is the confirmation printed after a route is written.
func ReportLine(req *routegen.Request) string {
	return fmt.Sprintf("Route created to %s through port %d:%d with mac addresses switch:%s pdn:%s",
		req.DestinationIP, req.Port.Port, req.Port.Channel, req.SwitchMAC, req.PdnMAC)
}

func (s *Session) persist(ctx context.Context, set *routegen.DescriptorSet) error {
	for _, doc := range set.Documents {
		res, err := s.ds.PutArtifact(ctx, doc.Name, doc.Content)
		if err != nil {
			return err
		}
		s.metrics.DocumentsWritten.WithLabelValues(string(doc.Kind)).Inc()

		if !res.Replaced {
			continue
		}
		diff := datastore.CompareArtifacts(res.PreviousContent, doc.Content)
		if !diff.HasChanges {
			continue
		}
		s.prompter.Println(fmt.Sprintf("Replaced %s:\n%s", doc.Name, strings.TrimRight(diff.DiffText, "\n")))
		if err := s.audit.ArtifactOverwritten(ctx, doc.Name, diff); err != nil {
			s.log.WithField("error", err).Warn("Failed to audit overwritten artifact")
		}
	}
	return nil
}

// warnIfReplacing tells the operator that an existing standard route is
// being regenerated. The pool is derived from the uplink filtering
// artifacts, so regenerating a route does not advance it and the new ids
// may already belong to another route.
func (s *Session) warnIfReplacing(ctx context.Context, name string) {
	_, err := s.ds.GetArtifact(ctx, fmt.Sprintf("filtering-%s-%s.json", routegen.DirectionUplink, name))
	if err != nil {
		return
	}
	s.log.WithField("route", name).Warn("Route already exists, its descriptors will be replaced")
	s.prompter.Println(fmt.Sprintf("Route %q already exists: its descriptors will be replaced, check next ids for collisions", name))
}

func (s *Session) collect() (*routegen.Request, error) {
	name, err := prompt.Validated(s.prompter, QuestionName, netid.ValidateName,
		s.retry(netid.FieldName, "Please enter a valid route name:"))
	if err != nil {
		return nil, err
	}

	ip, err := prompt.Validated(s.prompter, QuestionIP, netid.ValidateIPWithMask,
		s.retry(netid.FieldIP, "Please enter a valid IP address:"))
	if err != nil {
		return nil, err
	}

	port, err := prompt.Validated(s.prompter, QuestionPort, netid.ValidatePort,
		s.retry(netid.FieldPort, "Please enter a valid port number:"))
	if err != nil {
		return nil, err
	}

	switchMAC, err := prompt.Validated(s.prompter, QuestionSwitchMAC, netid.ValidateMAC,
		s.retry(netid.FieldMAC, "Please enter a valid mac address:"))
	if err != nil {
		return nil, err
	}

	pdnMAC, err := prompt.Validated(s.prompter, QuestionPdnMAC, netid.ValidateMAC,
		s.retry(netid.FieldMAC, "Please enter a valid mac address:"))
	if err != nil {
		return nil, err
	}

	return &routegen.Request{
		Name:          name,
		DestinationIP: ip,
		Port:          port,
		SwitchMAC:     switchMAC,
		PdnMAC:        pdnMAC,
	}, nil
}

func (s *Session) retry(field, message string) prompt.RetryHook {
	return func(err error) {
		s.prompter.Println(message, messageOf(err))
		s.countRejection(field, err)
	}
}

func (s *Session) countRejection(field string, err error) {
	s.metrics.ValidationFailures.WithLabelValues(field).Inc()
	s.log.WithField("field", field).WithField("error", err).Debug("Rejected answer")
}

func messageOf(err error) string {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func causeOf(err error) string {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.Cause
	}
	return "Unexpected failure"
}

func actionOf(err error) string {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.Action
	}
	return "Check the log for details and retry"
}
