package buildcmd

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-tagfeed/internal/site"
)

const (
	buildSiteMessageType = "sitegen.site.build"
	cleanSiteMessageType = "sitegen.site.clean"
)

// ResultCallback receives build results. It is invoked synchronously from
// the handler whenever the site returned a result.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a build command.
type ResultEnvelope struct {
	Result   *site.BuildResult
	Metadata map[string]any
}

// BuildSiteCommand runs a full site build.
type BuildSiteCommand struct {
	// DryRun renders everything without writing to the destination.
	DryRun bool `json:"dry_run,omitempty"`
	// Clean empties the destination before building.
	Clean          bool           `json:"clean,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate rejects combinations that would modify the destination during a
// dry run.
func (m BuildSiteCommand) Validate() error {
	errs := validation.Errors{}
	if m.DryRun && m.Clean {
		errs["clean"] = validation.NewError("sitegen.site.build.clean_dry_run", "clean cannot be combined with dry_run")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CleanSiteCommand removes every generated file from the destination.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanSiteCommand) Validate() error { return nil }
