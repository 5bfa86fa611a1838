// Command person-ingest reconciles an HR position extract against the VIVO
// knowledge base and writes the add, sub and exception files of the run.
package main

func main() {
	Execute()
}
