// Package supervisor runs the device's single cooperative loop: it keeps the
// Wi-Fi network and broker session healthy, reports that health on a status
// LED, and publishes one sensor snapshot for every rising edge of the motion
// input.
//
// All hardware and transport is reached through the small interfaces in
// collaborators.go so that the loop can be driven deterministically in tests.
package supervisor
