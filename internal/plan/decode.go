package plan

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/odds"
)

//go:embed schema.cue
var schemaSource string

// neutralTactic fills a tactic slider the submission left out.
const neutralTactic = 50

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	planDef    cue.Value
	schemaErr  error
)

// CUE values are not safe for concurrent use, so decoding is serialized.
var decodeMu sync.Mutex

func loadSchema() error {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile plan schema: %w", err)
			return
		}
		planDef = v.LookupPath(cue.ParsePath("#Plan"))
		if !planDef.Exists() {
			schemaErr = fmt.Errorf("compile plan schema: #Plan not defined")
		}
	})
	return schemaErr
}

type wireLine struct {
	F []int64 `json:"F"`
	D []int64 `json:"D"`
}

type wireTactics struct {
	Aggression *int `json:"aggression"`
	Forecheck  *int `json:"forecheck"`
	ShootBias  *int `json:"shoot_bias"`
	Risk       *int `json:"risk"`
}

type wirePlan struct {
	Lines    map[string]wireLine `json:"lines"`
	GoalieID int64               `json:"goalie_id"`
	Tactics  *wireTactics        `json:"tactics"`
}

// Decode parses a submitted plan in YAML or JSON form.
//
// Structure is strict: unknown fields, negative ids, or more than three
// forwards or two defenders in a line are INVALID_REQUEST. Content is
// lenient: missing lines or goalie are filled by the engine's fallbacks, a
// missing tactics block becomes the default tactics, and sliders are clamped
// to [0,100].
func Decode(data []byte) (league.Plan, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return league.Plan{}, league.Invalid("plan: %v", err)
	}
	if doc == nil {
		return league.Plan{}, league.Invalid("plan: empty document")
	}
	if _, ok := doc.(map[string]any); !ok {
		return league.Plan{}, league.Invalid("plan: expected a mapping, got %T", doc)
	}

	if err := loadSchema(); err != nil {
		return league.Plan{}, err
	}

	decodeMu.Lock()
	defer decodeMu.Unlock()

	v := planDef.Unify(schemaCtx.Encode(doc))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return league.Plan{}, league.Invalid("plan: %s", firstCUEError(err))
	}

	var w wirePlan
	if err := v.Decode(&w); err != nil {
		return league.Plan{}, league.Invalid("plan: %s", firstCUEError(err))
	}
	return w.toPlan(), nil
}

func (w wirePlan) toPlan() league.Plan {
	p := league.Plan{
		Lines:    make(map[string]league.Line, len(w.Lines)),
		GoalieID: w.GoalieID,
		Tactics:  league.DefaultTactics,
	}
	for k, l := range w.Lines {
		p.Lines[k] = league.Line{Forwards: l.F, Defense: l.D}
	}
	if w.Tactics != nil {
		p.Tactics = league.Tactics{
			Aggression: slider(w.Tactics.Aggression),
			Forecheck:  slider(w.Tactics.Forecheck),
			ShootBias:  slider(w.Tactics.ShootBias),
			Risk:       slider(w.Tactics.Risk),
		}
	}
	return p
}

func slider(v *int) int {
	if v == nil {
		return neutralTactic
	}
	return odds.ClampInt(*v, 0, 100)
}

// firstCUEError reduces a CUE error list to its first message.
func firstCUEError(err error) string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	return errs[0].Error()
}
