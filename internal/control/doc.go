// Package control turns raw pointer input into the attach/drag state of the
// chain's handle particle.
//
// The [Controller] is a three-state machine:
//
//	Idle --press--> Pressed --near handle--> Attached
//	Attached --release--> Idle
//	Attached --drag past threshold--> Idle (fling, callback fires once)
//
// While Attached, [Controller.Override] pins the handle to the pointer
// after the constraint pass, so the pointer always wins.
//
// # Usage
//
//	ctrl := control.New(control.Settings{AttachThreshold: 20, DragThreshold: 200})
//	ctrl.OnFling(func(ev control.FlingEvent) { log.Printf("flung %.0f", ev.Distance) })
//	ctrl.Update(pointer, chain.HandlePos())
//	...
//	ctrl.Override(chain)
package control
