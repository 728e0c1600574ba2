package draw

import (
	"context"
	"errors"
	"io/fs"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/PullBot_Go/internal/domain"
)

func testAssets() fstest.MapFS {
	return fstest.MapFS{
		"common/bat_king.png":          {},
		"common/slime.png":             {},
		"common/readme.txt":            {},
		"uncommon/goblin-chief.jpg":    {},
		"rare/fire_dragon.webp":        {},
		"legendary/ancient__wyrm.gif":  {},
		"vip_legendary/golden_cat.png": {},
		"empty":                        {Mode: fs.ModeDir},
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Categories["mythic"] = "empty"
	cfg.Cohorts = []Cohort{
		{
			Name:     "broken",
			Priority: 5,
			Tables:   map[string]Table{SlotRare: {{Category: "mythic", Weight: 1}}},
		},
		{
			Name:     "vip",
			Priority: 1,
			Members:  []string{"u-vip", "u-both"},
			Tables:   map[string]Table{SlotRare: {{Category: domain.RarityLegendary, Weight: 1}}},
			Assets:   map[string]string{domain.RarityLegendary: "vip_legendary"},
		},
		{
			Name:     "tier2",
			Priority: 2,
			Members:  []string{"u-both", "u-tier2"},
			Tables:   map[string]Table{SlotUncommon: {{Category: domain.RarityRare, Weight: 1}}},
		},
	}
	return cfg
}

func fixed(v float64) func() float64 {
	return func() float64 { return v }
}

func newTestEngine(t *testing.T, rnd func() float64) *Engine {
	t.Helper()
	e, err := NewEngine(testConfig(), testAssets(), WithRandom(rnd))
	require.NoError(t, err)
	return e
}

func rarities(cards []domain.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Rarity
	}
	return out
}

func TestDraw_SlotSequence(t *testing.T) {
	t.Run("extra slot included when coin flip succeeds", func(t *testing.T) {
		e := newTestEngine(t, fixed(0))
		cards, err := e.Draw(context.Background(), "u-1", "")
		require.NoError(t, err)

		assert.Equal(t, []string{
			"common", "common", "common", "common",
			"uncommon", "uncommon", "uncommon",
			"rare", "rare",
		}, rarities(cards))
	})

	t.Run("extra slot skipped when coin flip fails", func(t *testing.T) {
		e := newTestEngine(t, fixed(0.5))
		cards, err := e.Draw(context.Background(), "u-1", "")
		require.NoError(t, err)
		assert.Len(t, cards, 8)
		assert.Equal(t, "rare", cards[7].Rarity)
	})

	t.Run("cards carry file and display name", func(t *testing.T) {
		e := newTestEngine(t, fixed(0))
		cards, err := e.Draw(context.Background(), "u-1", "")
		require.NoError(t, err)
		assert.Equal(t, domain.Card{Rarity: "common", File: "common/bat_king.png", Name: "Bat King"}, cards[0])
	})
}

func TestDraw_CohortReplacesTable(t *testing.T) {
	e := newTestEngine(t, fixed(0.5))

	base, err := e.Draw(context.Background(), "u-1", "")
	require.NoError(t, err)
	vip, err := e.Draw(context.Background(), "u-vip", "")
	require.NoError(t, err)

	assert.Equal(t, "rare", base[7].Rarity)
	assert.Equal(t, "legendary", vip[7].Rarity)
	assert.Equal(t, "vip_legendary/golden_cat.png", vip[7].File, "cohort asset pool should be used")

	// Slots without a cohort table use the base table
	assert.Equal(t, rarities(base[:7]), rarities(vip[:7]))
}

func TestResolveCohort(t *testing.T) {
	e := newTestEngine(t, fixed(0))

	c, err := e.ResolveCohort("u-both", "")
	require.NoError(t, err)
	assert.Equal(t, "vip", c.Name, "lower priority checked first")

	c, err = e.ResolveCohort("u-tier2", "")
	require.NoError(t, err)
	assert.Equal(t, "tier2", c.Name)

	c, err = e.ResolveCohort("u-nobody", "")
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = e.ResolveCohort("u-vip", "tier2")
	require.NoError(t, err)
	assert.Equal(t, "tier2", c.Name, "override wins over membership")

	_, err = e.ResolveCohort("u-1", "ghost")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDraw_EmptyPoolIsConfigurationDefect(t *testing.T) {
	e := newTestEngine(t, fixed(0))

	cards, err := e.Draw(context.Background(), "u-1", "broken")
	assert.Nil(t, cards)
	require.ErrorIs(t, err, domain.ErrConfigurationDefect)

	var defect *domain.ConfigurationDefectError
	require.True(t, errors.As(err, &defect))
	assert.Equal(t, SlotRare, defect.Slot)
	assert.Equal(t, "mythic", defect.Category)
	assert.Equal(t, "broken", defect.Cohort)
}

func TestMintFromPool(t *testing.T) {
	e := newTestEngine(t, fixed(0.9))

	cards, err := e.MintFromPool(context.Background(), domain.RarityCommon, 3)
	require.NoError(t, err)
	require.Len(t, cards, 3)
	for _, c := range cards {
		assert.Equal(t, "common", c.Rarity)
		assert.Equal(t, "common/slime.png", c.File)
		assert.Equal(t, "Slime", c.Name)
	}

	_, err = e.MintFromPool(context.Background(), "nope", 1)
	assert.ErrorIs(t, err, domain.ErrConfigurationDefect)

	_, err = e.MintFromPool(context.Background(), "mythic", 1)
	assert.ErrorIs(t, err, domain.ErrConfigurationDefect)

	cards, err = e.MintFromPool(context.Background(), domain.RarityRare, 0)
	assert.NoError(t, err)
	assert.Empty(t, cards)
}

func TestLoadAssetPools_FiltersExtensions(t *testing.T) {
	pools, err := LoadAssetPools(testAssets(), testConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"common/bat_king.png", "common/slime.png"}, pools["common"].Files)
	assert.Empty(t, pools["empty"].Files)
}

func TestConfigValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown table", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Slots[0].Table = "missing"
		assert.ErrorIs(t, cfg.Validate(), domain.ErrConfigurationDefect)
	})

	t.Run("unknown category", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Tables[SlotCommon] = Table{{Category: "ghost", Weight: 1}}
		assert.ErrorIs(t, cfg.Validate(), domain.ErrConfigurationDefect)
	})

	t.Run("zero total weight", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Tables[SlotCommon] = Table{{Category: domain.RarityCommon, Weight: 0}}
		assert.ErrorIs(t, cfg.Validate(), domain.ErrConfigurationDefect)
	})

	t.Run("duplicate cohort", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Cohorts = []Cohort{{Name: "a"}, {Name: "a"}}
		assert.ErrorIs(t, cfg.Validate(), domain.ErrConfigurationDefect)
	})

	t.Run("cohort overrides unknown slot", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Cohorts = []Cohort{{Name: "vip", Tables: map[string]Table{
			"rar": {{Category: domain.RarityLegendary, Weight: 1}},
		}}}
		err := cfg.Validate()
		assert.ErrorIs(t, err, domain.ErrConfigurationDefect)
		assert.Contains(t, err.Error(), `unknown slot "rar"`)
	})

	t.Run("cohort overrides known slot", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Cohorts = []Cohort{{Name: "vip", Tables: map[string]Table{
			SlotRare: {{Category: domain.RarityLegendary, Weight: 1}},
		}}}
		assert.NoError(t, cfg.Validate())
	})
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"common/bat_king.png", "Bat King"},
		{"uncommon/goblin-chief.jpg", "Goblin Chief"},
		{"legendary/ancient__wyrm.gif", "Ancient Wyrm"},
		{"slime.png", "Slime"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.file))
		})
	}
}

func TestDisplayName_ConcurrentCallers(t *testing.T) {
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if got := DisplayName("common/fire_dragon-egg.png"); got != "Fire Dragon Egg" {
					t.Errorf("DisplayName = %q", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}
