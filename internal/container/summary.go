package container

import "adaptive-grid-bot/grid"

// Summary is the operator-facing projection of the current configuration.
// Its shape is stable; it is not a source of truth.
type Summary struct {
	API     APISummary     `json:"api"`
	Grid    GridSummary    `json:"grid"`
	Trading TradingSummary `json:"trading"`
	App     AppSummary     `json:"app"`
}

type APISummary struct {
	Exchange string `json:"exchange"`
	Testnet  bool   `json:"testnet"`
}

type GridSummary struct {
	Levels     int     `json:"levels"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
	Spacing    float64 `json:"spacing"`
	Strategy   string  `json:"strategy"`
}

type TradingSummary struct {
	Mode            string  `json:"mode"`
	Symbol          string  `json:"symbol"`
	MaxPositionSize float64 `json:"max_position_size"`
}

type AppSummary struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Debug   bool   `json:"debug"`
}

// Summary projects the current snapshot.
func (c *Container) Summary() Summary {
	cfg := c.current.Load().cfg
	step, _ := grid.Spacing(cfg.Grid)
	return Summary{
		API: APISummary{
			Exchange: cfg.API.Exchange,
			Testnet:  cfg.API.Testnet,
		},
		Grid: GridSummary{
			Levels:     cfg.Grid.Levels,
			LowerBound: cfg.Grid.LowerBound,
			UpperBound: cfg.Grid.UpperBound,
			Spacing:    step,
			Strategy:   cfg.Grid.Strategy.String(),
		},
		Trading: TradingSummary{
			Mode:            cfg.Trading.Mode.String(),
			Symbol:          cfg.Trading.Symbol,
			MaxPositionSize: cfg.Trading.MaxPositionSize,
		},
		App: AppSummary{
			Name:    cfg.App.Name,
			Version: cfg.App.Version,
			Debug:   cfg.App.DebugMode,
		},
	}
}

// Fields flattens the summary into dotted keys for structured logs.
func (s Summary) Fields() map[string]interface{} {
	return map[string]interface{}{
		"api.exchange":              s.API.Exchange,
		"api.testnet":               s.API.Testnet,
		"grid.levels":               s.Grid.Levels,
		"grid.lower_bound":          s.Grid.LowerBound,
		"grid.upper_bound":          s.Grid.UpperBound,
		"grid.spacing":              s.Grid.Spacing,
		"grid.strategy":             s.Grid.Strategy,
		"trading.mode":              s.Trading.Mode,
		"trading.symbol":            s.Trading.Symbol,
		"trading.max_position_size": s.Trading.MaxPositionSize,
		"app.name":                  s.App.Name,
		"app.version":               s.App.Version,
		"app.debug":                 s.App.Debug,
	}
}
