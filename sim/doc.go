// Package sim provides the data model shared by every simulation session component.
//
// # Reading Guide
//
// Start with these files to understand how a learner's input becomes a request:
//   - descriptor.go: ParameterDescriptor, the static declaration of one simulation input
//   - form.go: FormModel, the current input values and their touched flags
//   - validate.go: Validate/ValidateFirst, pure field-level checks against descriptors
//   - request.go: SimulationRequest, SimulationResponse and TaskRecord wire types
//   - errors.go: the error taxonomy shared by the controller and the transport
//
// # Architecture
//
// The sim package holds pure data types and functions; stateful components live in
// sub-packages:
//   - sim/session/: session flag, login/logout service, SessionGate
//   - sim/scenario/: scenario catalog (descriptor lists + endpoint paths)
//   - sim/submit/: SubmissionController state machine and HTTP transport
//   - sim/compose/: ResultComposer, the per-view projections of one response
//   - sim/render/: text and PNG adapters consuming composed results
//   - sim/history/: local record of past submissions
//   - sim/feedback/: session-gated module feedback form
package sim
