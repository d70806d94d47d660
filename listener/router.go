package listener

import (
	glog "github.com/goliatone/go-logger/glog"

	"github.com/bvcollective/sheetbridge/core"
)

// Router maps a normalized row event to a routed action. Two small
// decision paths keyed by event type: created rows check the
// early-stage set, updated rows require the full actionable-change
// predicate.
type Router struct {
	classifier *Classifier
	logger     glog.Logger
}

func NewRouter(classifier *Classifier, logger glog.Logger) *Router {
	return &Router{
		classifier: classifier,
		logger:     glog.Ensure(logger),
	}
}

// Route classifies one event. A nil event routes to no action.
func (r *Router) Route(event *RowEvent) core.RoutedAction {
	if r == nil || r.classifier == nil || event == nil {
		return core.RoutedAction{Kind: core.ActionNone, Reason: "no row event"}
	}

	switch event.EventType {
	case eventTypeCreated:
		if !r.classifier.IsEarlyStage(event) {
			return core.RoutedAction{Kind: core.ActionNone, Reason: "status not early-stage"}
		}
		info := r.classifier.ProjectInfo(event)
		r.logger.Info("routing early-stage created row",
			"row_id", event.RowID, "project_id", info.ProjectID)
		return core.RoutedAction{Kind: core.ActionEarlyStage, Project: info}
	case eventTypeUpdated:
		if !r.classifier.IsActionableChange(event) {
			return core.RoutedAction{Kind: core.ActionNone, Reason: "not an actionable change"}
		}
		info := r.classifier.ProjectInfo(event)
		r.logger.Info("routing deal-won row update",
			"row_id", event.RowID, "project_id", info.ProjectID, "project_type", info.ProjectType)
		return core.RoutedAction{Kind: core.ActionDealWon, Project: info}
	default:
		return core.RoutedAction{Kind: core.ActionNone, Reason: "unsupported event type"}
	}
}
