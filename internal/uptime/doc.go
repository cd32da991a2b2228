// Package uptime reports host uptime, the input to the boot-grace rule.
package uptime
