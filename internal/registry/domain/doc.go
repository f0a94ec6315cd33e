// Package domain holds the page registry domain model: pages, ownership
// policies, update requests, reactions, and the treasury payout rules.
// Types here are pure data plus validation; persistence and orchestration
// live in the service and storage packages.
package domain
