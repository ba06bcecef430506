/*
Package parley is a session-scoped, rule-matching dialogue engine.

A conversation is a small star-shaped state machine. The hub state "initial" answers
open questions and routes to topic states; each topic state asks a follow-up question
and, once answered, sends the conversation back to the hub. Every state holds an
ordered list of case-insensitive regular expressions, and the first one that matches
the user's text decides the reply. Anything unmatched gets the fallback reply and a
reset to "initial".

Sessions are created lazily. A caller that sends no identifier, or one the store does
not know, gets a freshly minted identifier back with the reply and should send it on
the next turn.

# Usage

	eng, err := parley.New() // default "Old English Village GP" rule set, in-memory store
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	ctx := context.Background()
	reply, _ := eng.Turn(ctx, "", "I have a headache")
	fmt.Println(reply.Response) // asks for a severity from 1 to 10

	reply, _ = eng.Turn(ctx, reply.SessionID, "about a 5")
	fmt.Println(reply.Response) // advice for a moderate headache

Custom dialogues are declared with the rules.Builder or loaded from a YAML file with
WithRulesFile. Storage is pluggable through ports.SessionStore: in-memory (default),
a TTL cache, or Redis for deployments with several replicas.
*/
package parley
