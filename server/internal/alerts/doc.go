// Package alerts notifies webhooks when an analysis finds spoiled food.
// Webhooks are delivered to Teams, Slack, or generic HTTP targets, with a
// per-device cooldown so a sensor stuck at Red does not flood the channel.
package alerts
