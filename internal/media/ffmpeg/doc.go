// Package ffmpeg wraps the external ffmpeg binary used to render clip and
// still-frame artifacts. Rendering is modeled as a Client interface so the
// generation pipeline can run against a fake in tests.
package ffmpeg
