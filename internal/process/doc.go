// Package process inspects the host process table and owns the single worker
// child spawned by botctl.
//
// Two table backends exist. The ps backend shells out to `ps aux` and works on
// any Unix host that ships ps. The procfs backend reads /proc directly and is
// only available on Linux. Both deliver signals through the same primitives and
// sweep with pkill, which is best-effort: hosts without pkill simply skip the
// sweep.
//
// Spawned children are placed in their own process group on Unix so that
// terminate and kill reach every member of the group, including interpreters
// started by a launcher such as uv. On Windows only the direct child is
// signalled, and graceful termination degrades to an immediate kill.
package process
