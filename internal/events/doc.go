// Package events provides types and interfaces for an event-driven architecture.
//
// The task registry publishes a StageChangedEvent after every accepted stage
// transition. Components subscribe by registering an EventHandler with an
// emitter, so the registry never depends on who observes task progress.
//
// The primary components are:
// - StageChangedEvent: a task moved from one stage to another
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
