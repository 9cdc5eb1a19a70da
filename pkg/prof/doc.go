// Package prof captures pprof profiles of the eeprom command line tools.
//
// Profiling is compiled in only with the "profile" build tag:
//
//	go build -tags profile ./cmd/eeprom
//
// Without the tag every function is a no-op and [Enabled] is false, so the
// --cpuprofile and --memprofile flags can stay wired in release builds.
//
// # Sessions
//
// [Start] begins a session from the two flag values. Either path may be
// empty. [Session.Stop] ends CPU sampling and writes the heap snapshot:
//
//	s, err := prof.Start(cpuPath, memPath)
//	if err != nil {
//	    return err
//	}
//	defer s.Stop()
//
// A long dump or fill of a slow part spends nearly all of its time in the
// write-cycle poll sleep, so CPU profiles are mostly useful for the
// simulator.
package prof
