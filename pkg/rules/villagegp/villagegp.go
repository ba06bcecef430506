// Package villagegp is the default rule set: a village physician who greets patients,
// asks one follow-up question per complaint and always returns to the waiting room.
package villagegp

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/rules"
)

// Topic states, each reachable from and returning to domain.StateInitial in one hop.
const (
	StateHeadacheSeverity domain.State = "headache_severity"
	StateFeverDuration    domain.State = "fever_duration"
	StateCoughType        domain.State = "cough_type"
	StateSleepHours       domain.State = "sleep_hours"
)

// Fallback is the reply to anything the physician cannot place.
const Fallback = "Thank you for your inquiry. I am afraid I did not quite follow. " +
	"As your Old English Village GP, I recommend a tincture of lavender and a fortnight's rest. " +
	"Do tell me if you suffer a headache, a fever, a cough or poor sleep."

// Greeting is the reply to a salutation.
const Greeting = "Good day to you! I am the village physician. " +
	"What ails you? A headache, a fever, a cough, or trouble sleeping?"

var table = sync.OnceValue(func() *rules.Table {
	return Builder().MustBuild()
})

// Table returns the shared, immutable default table.
func Table() *rules.Table {
	return table()
}

// Builder returns the default rules as a builder, for callers that want to extend them.
func Builder() *rules.Builder {
	b := rules.New().Fallback(Fallback)

	b.State(domain.StateInitial).
		Static(`\b(hi|hello|hey|greetings|good (morning|afternoon|evening|day))\b`, Greeting).
		Go(`head ?ache|migraine`, rules.Text("I am sorry your head troubles you. On a scale of 1 to 10, how severe is the pain?"), StateHeadacheSeverity).
		Go(`fever|temperature|feverish`, rules.Text("A fever, you say. How many days has it been with you?"), StateFeverDuration).
		Go(`cough`, rules.Text("Is the cough dry, or does it bring up phlegm?"), StateCoughType).
		Go(`insomnia|(can't|cannot|trouble|poor|not) sleep`, rules.Text("Poor sleep wears on the best of us. How many hours do you sleep of a night?"), StateSleepHours).
		Static(`\bthank`, "You are most welcome. Mind you rest well.").
		Static(`\b(bye|goodbye|farewell)\b`, "Fare thee well. Send word should your symptoms worsen.").
		Static(`\bhelp\b`, "You may tell me of a headache, a fever, a cough or trouble sleeping, and I shall advise.")

	b.State(StateHeadacheSeverity).
		Go(`\b(10|[1-9])\b`, rules.Func1(headacheAdvice), domain.StateInitial).
		Go(`\b(mild|slight|moderate|bad|severe|terrible|awful)\b`, rules.Func1(headacheWordAdvice), domain.StateInitial)

	// Weeks come before the bare number, which is read as days.
	b.State(StateFeverDuration).
		Go(`(\d+) ?weeks?\b`, rules.Func1(feverWeeksAdvice), domain.StateInitial).
		Go(`\b(a|one) week\b|\bweeks\b`, rules.Text("A fever lasting a week or more must be seen in person. Come to the surgery today."), domain.StateInitial).
		Go(`(\d+)`, rules.Func1(feverAdvice), domain.StateInitial).
		Go(`\b(today|yesterday|one day|a day)\b`, rules.Text("A young fever. Keep warm, sip broth, and rest a few days. Send for me if it climbs."), domain.StateInitial)

	b.State(StateCoughType).
		Go(`\bdry\b`, rules.Text("A dry cough is soothed by honey in warm water and a steaming basin. Should it linger past three weeks, visit the surgery."), domain.StateInitial).
		Go(`phlegm|wet|chesty|mucus|productive`, rules.Text("A chesty cough wants steam, fluids and rest. If the phlegm turns green or you grow breathless, come and see me."), domain.StateInitial)

	b.State(StateSleepHours).
		Go(`(\d+)`, rules.Func1(sleepAdvice), domain.StateInitial)

	return b
}

func headacheAdvice(severity string) string {
	n, _ := strconv.Atoi(severity)
	switch {
	case n <= 3:
		return fmt.Sprintf("A severity of %s is mild. A cup of willow bark tea and a quiet hour in a darkened room should serve.", severity)
	case n <= 6:
		return fmt.Sprintf("A severity of %s is moderate. Take a tincture of lavender, drink plenty of water and rest your eyes. Should it persist beyond two days, call upon me.", severity)
	default:
		return fmt.Sprintf("A severity of %s is severe. Please come to the surgery without delay, and send for help at once should your vision blur or your neck stiffen.", severity)
	}
}

func headacheWordAdvice(word string) string {
	switch word {
	case "mild", "slight":
		return headacheAdvice("2")
	case "moderate", "bad":
		return headacheAdvice("5")
	default:
		return headacheAdvice("8")
	}
}

func feverAdvice(days string) string {
	n, _ := strconv.Atoi(days)
	if n < 3 {
		return fmt.Sprintf("A fever of %s days is young yet. Keep warm, sip broth, and rest. Send for me if it climbs.", days)
	}
	return fmt.Sprintf("A fever of %s days warrants a visit. Come to the surgery so I may examine you.", days)
}

func feverWeeksAdvice(weeks string) string {
	unit := "weeks"
	if n, _ := strconv.Atoi(weeks); n == 1 {
		unit = "week"
	}
	return fmt.Sprintf("A fever of %s %s must be seen in person. Come to the surgery today.", weeks, unit)
}

func sleepAdvice(hours string) string {
	n, _ := strconv.Atoi(hours)
	if n >= 7 {
		return fmt.Sprintf("%s hours is a fair night's sleep. Perhaps it is the quality, not the quantity: a warm milk before bed may help.", hours)
	}
	return fmt.Sprintf("Only %s hours! Forgo coffee after noon, take a walk in the daylight, and try a chamomile infusion at bedtime.", hours)
}
