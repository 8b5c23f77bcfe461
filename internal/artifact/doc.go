// Package artifact serializes a spike-train Bundle to a single file.
//
// Three formats are supported:
//
//   - mat: MATLAB Level 5 MAT-file, uncompressed. SpikeTimes_hom,
//     SpikeTimes_inh and rates_ref are 1 x n double row vectors;
//     SpikeTimes_ref is an n x k double matrix with one column per rate.
//     This is the layout scipy.io.loadmat and MATLAB's load expect.
//   - json: one object keyed by the four field names; SpikeTimes_ref is a
//     list of n rows of k values.
//   - arrow: Arrow IPC file holding one record with list<double> columns;
//     SpikeTimes_ref is list<list<double>>, one inner list per rate.
//
// Every format round-trips float64 values bit for bit.
//
// Files are written atomically: the bundle goes to a temporary file in the
// destination directory, which is synced and renamed over the target only
// after encoding succeeds. A failed write leaves no file behind.
package artifact
