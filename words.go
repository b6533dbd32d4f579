package main

import (
	"math/rand/v2"
)

// Word is a single catalog entry: the secret text plus the hint revealed to
// players who have skipped enough turns.
type Word struct {
	Word string `json:"word"`
	Hint string `json:"hint"`
}

// The fixed word catalog, partitioned by category. Givers may also submit
// free-text custom words, so these lists only need to cover the common case.
var (
	celebrities = []Word{
		{Word: "Robert Lewandowski", Hint: "Scores goals for a living"},
		{Word: "Taylor Swift", Hint: "Writes songs about exes"},
		{Word: "Albert Einstein", Hint: "Relatively famous physicist"},
		{Word: "Freddie Mercury", Hint: "Wanted to break free"},
		{Word: "Serena Williams", Hint: "Dominates on the court"},
		{Word: "Leonardo da Vinci", Hint: "Painted a famous smile"},
		{Word: "Usain Bolt", Hint: "Fastest man alive"},
		{Word: "Marie Curie", Hint: "Won two Nobel prizes"},
		{Word: "Elvis Presley", Hint: "The King of Rock and Roll"},
		{Word: "David Attenborough", Hint: "Narrates the natural world"},
	}

	fictionalCharacters = []Word{
		{Word: "Batman", Hint: "Fights crime dressed as a bat"},
		{Word: "Sherlock Holmes", Hint: "Detective at 221B Baker Street"},
		{Word: "Darth Vader", Hint: "Heavy breather with a red sword"},
		{Word: "Hermione Granger", Hint: "Cleverest witch of her age"},
		{Word: "Homer Simpson", Hint: "Loves donuts, works at a power plant"},
		{Word: "Gandalf", Hint: "You shall not pass"},
		{Word: "James Bond", Hint: "Shaken, not stirred"},
		{Word: "Shrek", Hint: "An ogre with layers"},
		{Word: "Wonder Woman", Hint: "Amazonian with a lasso of truth"},
		{Word: "Spider-Man", Hint: "Friendly neighborhood web-slinger"},
	}

	everydayItems = []Word{
		{Word: "Toothbrush", Hint: "Used twice a day, hopefully"},
		{Word: "Umbrella", Hint: "Opens when the sky does"},
		{Word: "Refrigerator", Hint: "Keeps your food cold"},
		{Word: "Scissors", Hint: "Two blades, one handle"},
		{Word: "Pillow", Hint: "Your head rests on it"},
		{Word: "Kettle", Hint: "Whistles when it's ready"},
		{Word: "Ladder", Hint: "Helps you reach high places"},
		{Word: "Mirror", Hint: "Shows you yourself"},
		{Word: "Backpack", Hint: "Carried on your shoulders"},
		{Word: "Candle", Hint: "Melts while it works"},
	}

	gameCharacters = []Word{
		{Word: "Mario", Hint: "Plumber who jumps on mushrooms"},
		{Word: "Pikachu", Hint: "Yellow and full of electricity"},
		{Word: "Lara Croft", Hint: "Raids tombs for a living"},
		{Word: "Kratos", Hint: "The God of War"},
		{Word: "Link", Hint: "Often mistaken for Zelda"},
		{Word: "Sonic", Hint: "Blue and very fast"},
		{Word: "Pac-Man", Hint: "Eats dots, avoids ghosts"},
		{Word: "Geralt of Rivia", Hint: "White-haired monster hunter"},
		{Word: "Master Chief", Hint: "Spartan in green armor"},
		{Word: "Steve", Hint: "Punches trees into blocks"},
	}
)

// catalog returns the full flattened word list.
func catalog() []Word {
	all := make([]Word, 0, len(celebrities)+len(fictionalCharacters)+len(everydayItems)+len(gameCharacters))
	all = append(all, celebrities...)
	all = append(all, fictionalCharacters...)
	all = append(all, everydayItems...)
	all = append(all, gameCharacters...)
	return all
}

// lookupWord finds a catalog entry by its exact text, for submissions that
// reference a catalog word rather than a custom one.
func lookupWord(text string) (Word, bool) {
	for _, w := range catalog() {
		if w.Word == text {
			return w, true
		}
	}
	return Word{}, false
}

// sampleWords draws n distinct words from the catalog, without replacement.
// If n exceeds the catalog size, the whole catalog is returned.
func sampleWords(n int) []string {
	all := catalog()
	rand.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})
	if n > len(all) {
		n = len(all)
	}
	choices := make([]string, 0, n)
	for _, w := range all[:n] {
		choices = append(choices, w.Word)
	}
	return choices
}
