// Command ticketctl talks to the fare backend from a terminal: it lists the
// catalog, prices journeys, verifies payments and renders or inspects tickets.
package main

func main() {
	Execute()
}
