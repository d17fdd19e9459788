// Package config loads the XML document describing one coupled run:
// participants, meshes, exchanged data, the m2n connection, and the
// coupling scheme. It is the one component in this runtime built
// directly on the standard library rather than a third-party binding —
// see DESIGN.md for why.
package config

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/jabolina/precouple/pkg/precouple/types"
)

// Configuration is the whole parsed document.
type Configuration struct {
	XMLName        xml.Name             `xml:"precice-configuration"`
	Participants    []ParticipantConfig  `xml:"participant"`
	M2N             []M2NConfig          `xml:"m2n"`
	CouplingScheme  CouplingSchemeConfig `xml:"coupling-scheme"`
}

// ParticipantConfig describes one coupled solver: the meshes it
// provides or receives, and the data fields it reads/writes.
type ParticipantConfig struct {
	Name   string        `xml:"name,attr"`
	Meshes []MeshConfig  `xml:"use-mesh"`
}

// MeshConfig names a mesh this participant provides (owns the
// geometry) or receives (is partitioned onto it).
type MeshConfig struct {
	Name       string       `xml:"name,attr"`
	Provide    bool         `xml:"provide,attr"`
	Dimensions int          `xml:"dimensions,attr"`
	Data       []DataConfig `xml:"data"`
}

// DataConfig names one scalar or vector field carried on a mesh.
type DataConfig struct {
	Name      string `xml:"name,attr"`
	Dimension int    `xml:"dimension,attr"`
}

// M2NConfig configures the socket connection between two participants'
// masters: one side accepts, the other connects.
type M2NConfig struct {
	Acceptor  string `xml:"acceptor,attr"`
	Connector string `xml:"connector,attr"`
	Address   string `xml:"address,attr"`
}

// CouplingSchemeConfig configures the protocol state machine: which
// two participants are coupled, how, and the window/iteration bounds.
type CouplingSchemeConfig struct {
	Type          string                     `xml:"type,attr"` // serial-explicit | serial-implicit | parallel-explicit | parallel-implicit
	First         string                     `xml:"first,attr"`
	Second        string                     `xml:"second,attr"`
	TimeWindow    float64                    `xml:"time-window-size,attr"`
	MaxTime       float64                    `xml:"max-time,attr"`
	MaxWindows    int                        `xml:"max-time-windows,attr"`
	MaxIterations float64                    `xml:"max-iterations,attr"`
	Exchanges     []ExchangeConfig           `xml:"exchange"`
	Measures      []ConvergenceMeasureConfig `xml:"convergence-measure"`
}

// ExchangeConfig is one configured data transfer direction within a
// coupled pair.
type ExchangeConfig struct {
	Data       string `xml:"data,attr"`
	Mesh       string `xml:"mesh,attr"`
	From       string `xml:"from,attr"`
	To         string `xml:"to,attr"`
	Constraint string `xml:"constraint,attr"` // consistent | conservative
	Initialize bool   `xml:"initialize,attr"`
}

// ConvergenceMeasureConfig configures one measure applied to an
// implicit coupling scheme's sub-iteration loop.
type ConvergenceMeasureConfig struct {
	Type          string  `xml:"type,attr"` // absolute | relative | residual-relative | min-iterations
	Data          string  `xml:"data,attr"`
	Limit         float64 `xml:"limit,attr"`
	MinIterations int     `xml:"min-iterations,attr"`
}

// Load parses a coupling configuration from path.
func Load(path string) (*Configuration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.ConfigError(fmt.Sprintf("opening %s: %v", path, err))
	}
	defer f.Close()
	return Parse(f)
}

// Parse parses a coupling configuration from an arbitrary reader.
func Parse(r io.Reader) (*Configuration, error) {
	var cfg Configuration
	if err := xml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, types.ConfigError(fmt.Sprintf("decoding configuration: %v", err))
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks the cross-references a decoded XML tree cannot
// enforce on its own: participant names referenced by the coupling
// scheme and exchanges must resolve to declared participants, and the
// scheme type must be one of the four known combinations.
func (c *Configuration) validate() error {
	names := make(map[string]bool, len(c.Participants))
	for _, p := range c.Participants {
		names[p.Name] = true
	}
	if !names[c.CouplingScheme.First] {
		return types.ConfigError(fmt.Sprintf("coupling-scheme first=%q is not a declared participant", c.CouplingScheme.First))
	}
	if !names[c.CouplingScheme.Second] {
		return types.ConfigError(fmt.Sprintf("coupling-scheme second=%q is not a declared participant", c.CouplingScheme.Second))
	}
	switch c.CouplingScheme.Type {
	case "serial-explicit", "serial-implicit", "parallel-explicit", "parallel-implicit":
	default:
		return types.ConfigError(fmt.Sprintf("unknown coupling-scheme type %q", c.CouplingScheme.Type))
	}
	for _, ex := range c.CouplingScheme.Exchanges {
		if !names[ex.From] {
			return types.ConfigError(fmt.Sprintf("exchange data=%q from=%q is not a declared participant", ex.Data, ex.From))
		}
		if !names[ex.To] {
			return types.ConfigError(fmt.Sprintf("exchange data=%q to=%q is not a declared participant", ex.Data, ex.To))
		}
		switch ex.Constraint {
		case "consistent", "conservative", "":
		default:
			return types.ConfigError(fmt.Sprintf("exchange data=%q has unknown constraint %q", ex.Data, ex.Constraint))
		}
	}
	return nil
}
