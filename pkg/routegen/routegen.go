// Package routegen turns a route request into the set of descriptor
// documents that program it on a fabric-tna switch.
//
// A standard route produces six documents, a filtering, forward and next
// entry for each direction. The uplink direction carries traffic from the
// gNB towards the requested destination, the downlink direction carries the
// replies back to the gNB. The INT route produces four filtering documents
// on the recirculation ports plus one forward and one next document.
package routegen

import (
	"fmt"
	"strings"

	"github.com/akam1o/tna-routegen/pkg/errors"
	"github.com/akam1o/tna-routegen/pkg/gnb"
	"github.com/akam1o/tna-routegen/pkg/netid"
	"github.com/akam1o/tna-routegen/pkg/routeid"
	"github.com/akam1o/tna-routegen/pkg/template"
)

// INTRouteName selects the INT topology.
const INTRouteName = "int"

// RecirculationPorts are the switch recirculation ports INT filtering is installed on.
var RecirculationPorts = [4]uint32{4294967040, 4294967041, 4294967042, 4294967043}

// Topology is the shape of a descriptor set.
type Topology string

const (
	TopologyStandard Topology = "standard"
	TopologyINT      Topology = "int"
)

// Direction of a document within a route.
type Direction string

const (
	DirectionUplink   Direction = "uplink"
	DirectionDownlink Direction = "downlink"
	DirectionINT      Direction = "int"
)

// Request is a validated route request.
type Request struct {
	Name          string
	DestinationIP netid.IPWithMask
	Port          netid.PortID
	SwitchMAC     netid.MAC
	PdnMAC        netid.MAC
}

// IsINT reports whether the request selects the INT topology.
func (r *Request) IsINT() bool {
	return r.Name == INTRouteName
}

// Document is one rendered descriptor.
type Document struct {
	Name      string // Artifact name, e.g. "next-uplink-office.json"
	Kind      template.Kind
	Direction Direction
	Content   string
}

// DescriptorSet is everything generated for one request.
type DescriptorSet struct {
	Topology   Topology
	Route      string
	UplinkID   int // INTNextHopID for INT
	DownlinkID int // zero for INT
	Documents  []Document
}

// Names lists the artifact names in document order.
func (s *DescriptorSet) Names() []string {
	names := make([]string, len(s.Documents))
	for i, d := range s.Documents {
		names[i] = d.Name
	}
	return names
}

// Generator renders descriptor sets from a template set.
type Generator struct {
	templates template.Set
}

// NewGenerator creates a generator. Every template kind must be present.
func NewGenerator(templates template.Set) (*Generator, error) {
	for _, k := range template.Kinds {
		if templates[k] == nil {
			return nil, errors.TemplateError(string(k), "template is missing")
		}
	}
	return &Generator{templates: templates}, nil
}

// Generate renders the descriptor set for req. link and nextID are only used
// by standard routes; nextID is the uplink id and nextID+1 the downlink id.
func (g *Generator) Generate(req *Request, link *gnb.LinkConfig, nextID int) (*DescriptorSet, error) {
	if req.IsINT() {
		return g.generateINT(req)
	}

	if link == nil {
		return nil, errors.New(errors.ErrCodeConfigNotFound,
			"Standard route requires the gNB link configuration",
			"No link configuration was supplied",
			"Resolve the gNB link configuration before generating routes")
	}
	if nextID < routeid.FirstStandardID {
		return nil, errors.RangeError("next hop id", fmt.Sprint(nextID),
			fmt.Sprintf("standard routes start at %d", routeid.FirstStandardID))
	}

	return g.generateStandard(req, link, nextID)
}

func (g *Generator) generateINT(req *Request) (*DescriptorSet, error) {
	set := &DescriptorSet{
		Topology: TopologyINT,
		Route:    req.Name,
		UplinkID: routeid.INTNextHopID,
	}

	for i, port := range RecirculationPorts {
		if err := g.add(set, fmt.Sprintf("filtering-int-%d.json", i), template.KindFiltering, DirectionINT,
			port, netid.ZeroMAC); err != nil {
			return nil, err
		}
	}

	steps := []struct {
		kind template.Kind
		args []any
	}{
		{template.KindForward, []any{req.DestinationIP, routeid.INTNextHopID}},
		{template.KindNext, []any{req.Port, req.SwitchMAC, req.PdnMAC, routeid.INTNextHopID}},
	}
	for _, s := range steps {
		if err := g.add(set, fmt.Sprintf("%s-int.json", s.kind), s.kind, DirectionINT, s.args...); err != nil {
			return nil, err
		}
	}

	return set, nil
}

func (g *Generator) generateStandard(req *Request, link *gnb.LinkConfig, nextID int) (*DescriptorSet, error) {
	set := &DescriptorSet{
		Topology:   TopologyStandard,
		Route:      req.Name,
		UplinkID:   nextID,
		DownlinkID: nextID + 1,
	}

	steps := []struct {
		kind template.Kind
		dir  Direction
		args []any
	}{
		{template.KindFiltering, DirectionUplink, []any{link.Port, link.SwitchMAC}},
		{template.KindForward, DirectionUplink, []any{req.DestinationIP, set.UplinkID}},
		{template.KindNext, DirectionUplink, []any{req.Port, req.SwitchMAC, req.PdnMAC, set.UplinkID}},
		{template.KindFiltering, DirectionDownlink, []any{req.Port, req.SwitchMAC}},
		{template.KindForward, DirectionDownlink, []any{link.GnbIP, set.DownlinkID}},
		{template.KindNext, DirectionDownlink, []any{link.Port, link.SwitchMAC, link.GnbMAC, set.DownlinkID}},
	}
	for _, s := range steps {
		name := fmt.Sprintf("%s-%s-%s.json", s.kind, s.dir, req.Name)
		if err := g.add(set, name, s.kind, s.dir, s.args...); err != nil {
			return nil, err
		}
	}

	return set, nil
}

func (g *Generator) add(set *DescriptorSet, name string, kind template.Kind, dir Direction, args ...any) error {
	content, err := g.templates[kind].Render(args...)
	if err != nil {
		return err
	}
	set.Documents = append(set.Documents, Document{Name: name, Kind: kind, Direction: dir, Content: content})
	return nil
}

// ArtifactInfo is what an artifact name says about its document.
type ArtifactInfo struct {
	Kind      template.Kind
	Direction Direction
	Route     string
}

// ParseArtifactName splits a name written by Generate back into its parts.
// ok is false for names Generate never produces.
func ParseArtifactName(name string) (info ArtifactInfo, ok bool) {
	base, found := strings.CutSuffix(name, ".json")
	if !found {
		return ArtifactInfo{}, false
	}

	parts := strings.SplitN(base, "-", 3)
	if len(parts) < 2 {
		return ArtifactInfo{}, false
	}

	kind := template.Kind(parts[0])
	if kind.ArgCount() == 0 {
		return ArtifactInfo{}, false
	}

	switch Direction(parts[1]) {
	case DirectionINT:
		if len(parts) == 3 && kind != template.KindFiltering {
			return ArtifactInfo{}, false
		}
		return ArtifactInfo{Kind: kind, Direction: DirectionINT, Route: INTRouteName}, true
	case DirectionUplink, DirectionDownlink:
		if len(parts) != 3 || parts[2] == "" {
			return ArtifactInfo{}, false
		}
		return ArtifactInfo{Kind: kind, Direction: Direction(parts[1]), Route: parts[2]}, true
	default:
		return ArtifactInfo{}, false
	}
}
