// Package attsnoop reconstructs Bluetooth attribute protocol exchanges from
// a captured HCI trace.
//
// Records are classified by the hci package: LE Meta events are decoded,
// ACL data is reassembled per connection and decoded as ATT PDUs, everything
// else is dropped. An Analyzer then makes two passes over the packets. The
// first learns the UUID behind each attribute handle from discovery
// responses, the second pairs every Read and Write Request with the
// response that follows it.
//
// USAGE
//
//     raws, err := snoop.Open("btsnoop_hci.log", snoop.FormatAuto)
//     if err != nil {
//     	log.Fatal(err)
//     }
//     txs, err := attsnoop.Run(raws)
//     if err != nil {
//     	log.Fatal(err)
//     }
//     for _, tx := range txs {
//     	fmt.Println(tx)
//     }
//
// which prints lines such as
//
//     #1184 Read 2a00 > [45 53 33 2d 78]
//     #1202 Write 6acc5502-db0a-4fe5-9a5e-8f8e4b8e8d2e > [01]
//
// ERRORS
//
// A record that does not hold what its headers claim (a short buffer, an
// unexpected record length, a fragment longer than its PDU or a UUID of odd
// size) ends the run. The returned error wraps wire.ErrStructural and names
// the record.
//
// Everything else is reported as a diag.Diagnostic and decoding goes on:
// responses without a request, requests left without a response, and codes
// outside the known set. By default diagnostics are logged through logrus
// at warning level; WithDiagnostics routes them elsewhere.
//
// LIMITATIONS
//
// Pairing is done with a single pending read and a single pending write for
// the whole capture. Captures of one device at a time are expected.
package attsnoop
