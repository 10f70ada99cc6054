package inventory

import (
	"context"

	"netinv/internal/model"
)

// Topic names a cached read that a write may make stale.
//
//	sites                  the site listing
//	site/{id}              one site and its summary
//	{kind}                 the global listing of a dependent kind
//	{kind}/{id}            one dependent record
//	{kind}/site/{siteID}   a kind's listing scoped to one site
//	unassigned/{kind}      the unassigned pool of a kind
type Topic string

const SitesTopic Topic = "sites"

func SiteTopic(id string) Topic { return Topic("site/" + id) }

func KindTopic(k model.Kind) Topic { return Topic(k) }

func RecordTopic(k model.Kind, id string) Topic { return Topic(string(k) + "/" + id) }

func SiteScopedTopic(k model.Kind, siteID string) Topic {
	return Topic(string(k) + "/site/" + siteID)
}

func UnassignedTopic(k model.Kind) Topic { return Topic("unassigned/" + string(k)) }

// Op identifies a write operation in the invalidation table.
type Op string

const (
	OpCreateSite   Op = "create-site"
	OpUpdateSite   Op = "update-site"
	OpDeleteSite   Op = "delete-site"
	OpSiteObjects  Op = "site-objects"
	OpCreateRecord Op = "create-record"
	OpUpdateRecord Op = "update-record"
	OpDeleteRecord Op = "delete-record"
	OpAssign       Op = "assign"
	OpUnassign     Op = "unassign"
	OpImport       Op = "import"
)

// Event carries the identifiers a write touched.
type Event struct {
	Kind       model.Kind
	RecordID   string
	SiteID     string
	PrevSiteID string
	// Kinds lists the dependent kinds affected by a site delete.
	Kinds []model.Kind
}

// invalidationTable maps every write operation to the topics it makes stale.
var invalidationTable = map[Op]func(Event) []Topic{
	OpCreateSite: func(ev Event) []Topic {
		return []Topic{SitesTopic, SiteTopic(ev.SiteID)}
	},
	OpUpdateSite: func(ev Event) []Topic {
		return []Topic{SitesTopic, SiteTopic(ev.SiteID)}
	},
	OpSiteObjects: func(ev Event) []Topic {
		return []Topic{SitesTopic, SiteTopic(ev.SiteID)}
	},
	OpDeleteSite: func(ev Event) []Topic {
		topics := []Topic{SitesTopic, SiteTopic(ev.SiteID)}
		for _, k := range ev.Kinds {
			topics = append(topics, KindTopic(k), SiteScopedTopic(k, ev.SiteID))
		}
		return topics
	},
	OpCreateRecord: recordTopics,
	OpUpdateRecord: recordTopics,
	OpDeleteRecord: recordTopics,
	OpAssign:       recordTopics,
	OpUnassign:     recordTopics,
	OpImport: func(ev Event) []Topic {
		topics := []Topic{SitesTopic}
		for _, k := range model.DependentKinds {
			topics = append(topics, KindTopic(k), UnassignedTopic(k))
		}
		return topics
	},
}

// recordTopics covers a write to one dependent record: its kind's listing,
// the record itself, and the site or unassigned pool holding it before and
// after the write.
func recordTopics(ev Event) []Topic {
	topics := []Topic{KindTopic(ev.Kind), RecordTopic(ev.Kind, ev.RecordID)}
	for _, siteID := range []string{ev.PrevSiteID, ev.SiteID} {
		if siteID == "" {
			topics = append(topics, UnassignedTopic(ev.Kind))
		} else {
			topics = append(topics, SiteScopedTopic(ev.Kind, siteID), SiteTopic(siteID))
		}
	}
	return topics
}

// Invalidations returns the topics made stale by op, without duplicates.
func Invalidations(op Op, ev Event) []Topic {
	fn, ok := invalidationTable[op]
	if !ok {
		return nil
	}
	seen := map[Topic]bool{}
	var out []Topic
	for _, t := range fn(ev) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// Cache memoizes listing reads under a topic. Invalidate drops the entries
// of the given topics.
type Cache interface {
	Load(ctx context.Context, topic Topic, load func(context.Context) (any, error)) (any, error)
	Invalidate(topics ...Topic)
}

// NopCache performs every load.
type NopCache struct{}

func (NopCache) Load(ctx context.Context, _ Topic, load func(context.Context) (any, error)) (any, error) {
	return load(ctx)
}

func (NopCache) Invalidate(...Topic) {}

func cachedLoad[T any](ctx context.Context, c Cache, topic Topic, load func(context.Context) (T, error)) (T, error) {
	v, err := c.Load(ctx, topic, func(ctx context.Context) (any, error) {
		return load(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
