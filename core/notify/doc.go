// Package notify turns failed renewal runs into operator alerts.
package notify
