package normalize

var defaultSynonyms = map[string]string{
	"dont":     "don't",
	"cant":     "can't",
	"wont":     "won't",
	"isnt":     "isn't",
	"arent":    "aren't",
	"doesnt":   "doesn't",
	"didnt":    "didn't",
	"hasnt":    "hasn't",
	"havent":   "haven't",
	"wouldnt":  "wouldn't",
	"couldnt":  "couldn't",
	"shouldnt": "shouldn't",
	"autumn":   "fall",
	"fall":     "autumn",
}

// Order matters: numeric extraction reports word matches in this order.
var defaultWordNumbers = []WordNumber{
	{"zero", 0}, {"one", 1}, {"two", 2}, {"three", 3}, {"four", 4},
	{"five", 5}, {"six", 6}, {"seven", 7}, {"eight", 8}, {"nine", 9},
	{"ten", 10}, {"eleven", 11}, {"twelve", 12}, {"thirteen", 13},
	{"fourteen", 14}, {"fifteen", 15}, {"sixteen", 16}, {"seventeen", 17},
	{"eighteen", 18}, {"nineteen", 19}, {"twenty", 20}, {"thirty", 30},
	{"forty", 40}, {"fifty", 50}, {"sixty", 60}, {"seventy", 70},
	{"eighty", 80}, {"ninety", 90}, {"hundred", 100},
	{"first", 1}, {"second", 2}, {"third", 3}, {"fourth", 4}, {"fifth", 5},
}
