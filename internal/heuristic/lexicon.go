package heuristic

// formalMarkers are connectives and register words over-represented in
// generated prose. Entries are folded (no accents, lower case).
var formalMarkers = makeSet(
	"furthermore", "moreover", "additionally", "consequently", "nevertheless",
	"nonetheless", "subsequently", "comprehensive", "methodology", "systematic",
	"sophisticated", "facilitates", "facilitate", "leverages", "leverage", "optimal",
	"optimization", "demonstrates", "substantial", "significant", "enhance", "enhances",
	"crucial", "pivotal", "robust", "seamless", "delve", "underscores", "notably",
	"multifaceted", "paramount", "encompasses",
	// French
	"neanmoins", "toutefois", "cependant", "notamment", "egalement", "consequemment",
	"primordial", "optimiser", "exhaustive",
)

// transitionMarkers are the sentence-linking adverbs counted for
// transition density.
var transitionMarkers = makeSet(
	"furthermore", "moreover", "additionally", "consequently", "nevertheless",
	"nonetheless", "subsequently", "therefore", "thus", "hence", "overall",
	"notably", "ultimately", "however",
	"neanmoins", "toutefois", "cependant", "ainsi", "donc", "egalement",
)

// humanMarkers are first-person, colloquial and contracted forms that
// point to a human author.
var humanMarkers = makeSet(
	"i", "my", "i'm", "i've", "i'd", "don't", "can't", "won't", "didn't", "isn't",
	"wasn't", "it's", "that's", "honestly", "personally", "awesome", "cool", "weird",
	"hate", "love", "guess", "lol", "kinda", "gonna", "wanna", "yeah", "okay",
	"je", "j'ai", "moi", "franchement", "perso", "bref", "genre", "trop",
)

// authorshipPhrases are acknowledgement and personal phrasings. Two or
// more of them damp the estimate. Phrases are in normalised form.
var authorshipPhrases = []string{
	"i would like to thank",
	"my sincere gratitude",
	"acknowledgement",
	"acknowledgements",
	"this journey",
	"working on this project",
	"my family and friends",
	"graduation project",
	"in my opinion",
	"from my experience",
	"je tiens a remercier",
	"mes remerciements",
}

// authorshipMinPhrases is the number of distinct phrases that triggers damping.
const authorshipMinPhrases = 2

func makeSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func contains(set map[string]struct{}, word string) bool {
	_, ok := set[word]
	return ok
}
