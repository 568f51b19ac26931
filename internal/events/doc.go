// Package events delivers app lifecycle notifications to registered listeners.
//
// Delivery is synchronous and in registration order. A listener that panics
// is recovered and logged; the remaining listeners still receive the event.
// Every fired event carries a dispatch id for log correlation.
package events
