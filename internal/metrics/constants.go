package metrics

// Metric names
const (
	MetricNamePullsTotal          = "gacha_pulls_total"
	MetricNamePityTriggersTotal   = "gacha_pity_triggers_total"
	MetricNameFallbacksTotal      = "gacha_resolution_fallbacks_total"
	MetricNamePacksTotal          = "gacha_packs_total"
	MetricNameCurrencySpent       = "gacha_currency_spent_total"
	MetricNameActiveSessions      = "gacha_active_sessions"
	MetricNameHTTPRequestsTotal   = "http_requests_total"
	MetricNameHTTPRequestDuration = "http_request_duration_seconds"
)

// Help text
const (
	HelpTextPullsTotal          = "Total number of resolved pulls by tier"
	HelpTextPityTriggersTotal   = "Total number of pulls forced by pity, by tier"
	HelpTextFallbacksTotal      = "Total number of weighted draws that fell back to the rarest candidate"
	HelpTextPacksTotal          = "Total number of pack requests by outcome"
	HelpTextCurrencySpent       = "Total currency debited for packs"
	HelpTextActiveSessions      = "Number of sessions currently held in memory"
	HelpTextHTTPRequestsTotal   = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration = "HTTP request latency in seconds"
)

// Labels
const (
	LabelTier    = "tier"
	LabelOutcome = "outcome"
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
)

// Outcome label values
const (
	OutcomeOpened   = "opened"
	OutcomeDeclined = "declined"
	OutcomeInvalid  = "invalid"
)
