// Package ops batches draws into operations and replays them on a device.
//
// A canvas turns every draw call into an Op. Ops are appended to an
// OpsTask, which tries to merge each new op into the previous one
// (CombineIfPossible) so consecutive compatible draws become one backend
// draw. Nothing reaches the device until OpsTask.Execute runs, which
// prepares vertex data, looks up programs, opens a render pass and issues
// the draws in order.
package ops
