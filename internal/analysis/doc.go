// Package analysis inspects recorded chain motion.
//
//   - [DominantFrequency]: strongest sway frequency of a coordinate series
//   - [PowerSpectrum]: FFT magnitude spectrum with the mean removed
//   - [HandlePhase]: position against velocity of the handle
//   - [HandleCrossings]: handle state whenever it crosses a line
//
// Series are usually taken from a stored run:
//
//	frames, _ := st.LoadFrames(id)
//	hz := analysis.DominantFrequency(storage.HandleSeries(frames, 0), meta.Dt)
package analysis
