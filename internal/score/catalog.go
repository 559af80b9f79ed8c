package score

import (
	"errors"
	"fmt"
)

var ErrUnknownActivity = errors.New("unknown activity")

// Separator is shown in the activity list but cannot be selected.
const Separator = "---------"

type Activity struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

func (a Activity) Selectable() bool {
	return a.Name != Separator
}

// Catalog is the ordered, fixed set of activities and their weights.
type Catalog struct {
	activities []Activity
	byName     map[string]Activity
}

func NewCatalog(activities []Activity) *Catalog {
	c := &Catalog{
		activities: make([]Activity, 0, len(activities)),
		byName:     make(map[string]Activity, len(activities)),
	}
	for _, a := range activities {
		if _, dup := c.byName[a.Name]; dup {
			continue
		}
		c.activities = append(c.activities, a)
		c.byName[a.Name] = a
	}
	return c
}

// DefaultCatalog is the activity list the tracker ships with.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Activity{
		{Name: "静坐30m", Weight: 0.16},
		{Name: "慢跑5千米60m", Weight: 0.333},
		{Name: "武当压腿+活骨功20m", Weight: 0.111},
		{Name: "五行气功10m", Weight: 0.056},
		{Name: "太极5m", Weight: 0.028},
		{Name: "易筋经20m", Weight: 0.111},
		{Name: "武当八段锦20m", Weight: 0.111},
		{Name: "12段锦20m", Weight: 0.111},
		{Name: "全身拍15m", Weight: 0.083},
		{Name: "其他20m", Weight: 0.111},
		{Name: "其他10m", Weight: 0.056},
		{Name: "其他5m", Weight: 0.028},
		{Name: Separator, Weight: 0},
	})
}

func (c *Catalog) Activities() []Activity {
	out := make([]Activity, len(c.activities))
	copy(out, c.activities)
	return out
}

// Weight returns the score of a selectable activity.
func (c *Catalog) Weight(name string) (float64, error) {
	a, ok := c.byName[name]
	if !ok || !a.Selectable() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownActivity, name)
	}
	return a.Weight, nil
}
