package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"

	DiscordTokenRefreshTotal       = "discord_token_refresh_total"
	DiscordRolesRevokedTotal       = "discord_roles_revoked_total"
	DiscordGuildMembersScanned     = "discord_guild_members_scanned"
	DiscordGuildSyncDurationSecond = "discord_guild_sync_duration_seconds"
)

var (
	PromGauges = map[string]*prometheus.GaugeVec{
		DiscordGuildMembersScanned: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: DiscordGuildMembersScanned,
			Help: "Number of guild members seen by the last guild sync",
		}, []string{"guild_id"}),
	}

	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "status_code"}),
		DiscordTokenRefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: DiscordTokenRefreshTotal,
			Help: "Count of Discord token refreshes",
		}, []string{"result"}),
		DiscordRolesRevokedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: DiscordRolesRevokedTotal,
			Help: "Count of local roles revoked because the user left the guild",
		}, []string{"role"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "status_code"}),
		DiscordGuildSyncDurationSecond: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    DiscordGuildSyncDurationSecond,
			Help:    "Duration of the guild sync job",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"guild_error"}),
	}
)

func PromCollectors() []prometheus.Collector {
	var cs []prometheus.Collector
	for _, gauge := range PromGauges {
		cs = append(cs, gauge)
	}

	for _, counter := range PromCounters {
		cs = append(cs, counter)
	}

	for _, histogram := range PromHistograms {
		cs = append(cs, histogram)
	}

	return cs
}
