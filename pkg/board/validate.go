package board

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/flowboard/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks a project before it is handed to a session: required
// fields, known size classes, well-formed and unique IDs, and edge
// endpoints that name existing nodes. Errors carry ErrCodeInvalidProject.
func (p *Project) Validate() error {
	if err := structValidator().Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidProject, err, "%s", describeValidation(err))
	}
	if err := errors.ValidateProjectName(p.Name); err != nil {
		return err
	}

	for _, c := range p.Categories {
		if err := errors.ValidateID("category", c.ID); err != nil {
			return err
		}
	}

	ids := make(map[string]bool, len(p.Nodes))
	for _, n := range p.Nodes {
		if err := errors.ValidateID("node", n.ID); err != nil {
			return err
		}
		if ids[n.ID] {
			return errors.New(errors.ErrCodeInvalidProject, "duplicate node id %q", n.ID)
		}
		ids[n.ID] = true
	}

	edgeIDs := make(map[string]bool)
	for i, e := range p.Edges {
		if !ids[e.From] {
			return errors.New(errors.ErrCodeInvalidProject, "edge %d: unknown source node %q", i, e.From)
		}
		if !ids[e.To] {
			return errors.New(errors.ErrCodeInvalidProject, "edge %d: unknown target node %q", i, e.To)
		}
		if e.ID == "" {
			continue
		}
		if err := errors.ValidateID("edge", e.ID); err != nil {
			return err
		}
		if edgeIDs[e.ID] {
			return errors.New(errors.ErrCodeInvalidProject, "duplicate edge id %q", e.ID)
		}
		edgeIDs[e.ID] = true
	}
	return nil
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return "invalid project"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
