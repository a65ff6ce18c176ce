package optimizer

import "context"

// loadConfig reads the per-persona config from the repo, falling back to
// the service defaults for missing rows and unset fields.
func (s *OptimizerService) loadConfig(ctx context.Context, personaID string) Config {
	if s.cfgRepo == nil {
		return s.defaultCfg
	}

	dbCfg, ok, err := s.cfgRepo.GetConfig(ctx, personaID)
	if err != nil || !ok {
		return s.defaultCfg
	}

	// start from defaults to keep sane fallbacks for any missing fields
	cfg := s.defaultCfg

	if dbCfg.TopK > 0 {
		cfg.TopK = dbCfg.TopK
	}
	if dbCfg.MinImpressions > 0 {
		cfg.MinImpressions = dbCfg.MinImpressions
	}
	if dbCfg.ExplorationRatio > 0 {
		cfg.ExplorationRatio = dbCfg.ExplorationRatio
	}
	if dbCfg.VirtualSamples > 0 {
		cfg.VirtualSamples = dbCfg.VirtualSamples
	}
	if dbCfg.SuccessThreshold > 0 {
		cfg.SuccessThreshold = dbCfg.SuccessThreshold
	}

	if dbCfg.WeightImpression > 0 {
		cfg.Weights.Impression = dbCfg.WeightImpression
	}
	if dbCfg.WeightLike > 0 {
		cfg.Weights.Like = dbCfg.WeightLike
	}
	if dbCfg.WeightShare > 0 {
		cfg.Weights.Share = dbCfg.WeightShare
	}
	if dbCfg.WeightComment > 0 {
		cfg.Weights.Comment = dbCfg.WeightComment
	}
	if dbCfg.WeightClick > 0 {
		cfg.Weights.Click = dbCfg.WeightClick
	}
	if dbCfg.WeightRepost > 0 {
		cfg.Weights.Repost = dbCfg.WeightRepost
	}
	if dbCfg.WeightSave > 0 {
		cfg.Weights.Save = dbCfg.WeightSave
	}
	if dbCfg.WeightView > 0 {
		cfg.Weights.View = dbCfg.WeightView
	}

	return cfg
}
