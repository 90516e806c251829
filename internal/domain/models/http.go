package models

// Requests for the pipeline HTTP endpoints. Defined in domain for consistency
// and reuse, transport tags only.

type PricesRequest struct {
	Instrument string `query:"instrument" json:"instrument" validate:"required"`
	Days       int    `query:"days" json:"days" default:"30" validate:"gte=1,lte=3650"`
}

type IndicatorsRequest struct {
	Instrument string `query:"instrument" json:"instrument" validate:"required"`
	Limit      int    `query:"limit" json:"limit" default:"90" validate:"gte=1,lte=3650"`
}

type FeaturesRequest struct {
	Instrument string `query:"instrument" json:"instrument" validate:"required"`
	Limit      int    `query:"limit" json:"limit" default:"90" validate:"gte=1,lte=3650"`
}

type TrainRequest struct {
	Instrument string `query:"instrument" json:"instrument" validate:"required"`
	Horizon    int    `query:"horizon" json:"horizon" default:"1" validate:"oneof=1 7 30"`
}

type PredictRequest struct {
	Instrument string `query:"instrument" json:"instrument" validate:"required"`
	Horizon    int    `query:"horizon" json:"horizon" default:"1" validate:"oneof=1 7 30"`
}

type PredictionsRequest struct {
	Instrument string `query:"instrument" json:"instrument" validate:"required"`
}

type EvaluateRequest struct {
	Instrument string `query:"instrument" json:"instrument" validate:"required"`
}

type RecomputeRequest struct {
	Instrument string `query:"instrument" json:"instrument" validate:"required"`
}

type CollectRequest struct {
	Instrument string `query:"instrument" json:"instrument" validate:"required"`
	Days       int    `query:"days" json:"days" default:"365" validate:"gte=1,lte=3650"`
}
