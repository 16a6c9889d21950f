package resolver

import "strings"

// mascotVocabulary is the fixed set of mascot suffixes the resolver may strip
// from a normalized name. Stripping is only attempted after every direct
// strategy fails, and only suffixes in this closed vocabulary are candidates;
// the resolver never invents a suffix from the data.
var mascotVocabulary = []string{
	"blue devils",
	"tar heels",
	"fighting irish",
	"yellow jackets",
	"crimson tide",
	"demon deacons",
	"horned frogs",
	"scarlet knights",
	"golden eagles",
	"golden gophers",
	"golden bears",
	"blue jays",
	"red raiders",
	"red storm",
	"nittany lions",
	"ragin cajuns",
	"green wave",
	"black bears",
	"mean green",
	"aggies",
	"badgers",
	"bears",
	"bearcats",
	"billikens",
	"blazers",
	"bluejays",
	"bobcats",
	"boilermakers",
	"bonnies",
	"broncos",
	"bruins",
	"buckeyes",
	"buffaloes",
	"bulldogs",
	"bulls",
	"cardinals",
	"catamounts",
	"cavaliers",
	"colonels",
	"commodores",
	"cornhuskers",
	"cougars",
	"cowboys",
	"crusaders",
	"cyclones",
	"dons",
	"ducks",
	"dukes",
	"eagles",
	"falcons",
	"flames",
	"flyers",
	"friars",
	"gaels",
	"gamecocks",
	"gators",
	"governors",
	"greyhounds",
	"grizzlies",
	"hawkeyes",
	"hawks",
	"hilltoppers",
	"hokies",
	"hoosiers",
	"hornets",
	"hoyas",
	"hurricanes",
	"huskies",
	"jaguars",
	"jayhawks",
	"knights",
	"lions",
	"lobos",
	"longhorns",
	"lumberjacks",
	"mavericks",
	"minutemen",
	"mocs",
	"mountaineers",
	"musketeers",
	"mustangs",
	"owls",
	"paladins",
	"panthers",
	"penguins",
	"phoenix",
	"pirates",
	"raiders",
	"rams",
	"razorbacks",
	"rebels",
	"redbirds",
	"retrievers",
	"roadrunners",
	"rockets",
	"salukis",
	"seminoles",
	"shockers",
	"sooners",
	"spartans",
	"spiders",
	"sycamores",
	"terrapins",
	"tigers",
	"titans",
	"trojans",
	"utes",
	"vikings",
	"volunteers",
	"wildcats",
	"wolfpack",
	"wolverines",
	"zags",
	"zips",
}

// StripMascot removes a known mascot suffix from an already-normalized name.
// It returns the shortened name and true when a vocabulary suffix matched.
// Longer suffixes are tried first so "blue devils" wins over a hypothetical
// "devils" entry.
func StripMascot(normalized string) (string, bool) {
	for _, suffix := range mascotVocabulary {
		trimmed := strings.TrimSuffix(normalized, " "+suffix)
		if trimmed != normalized && trimmed != "" {
			return trimmed, true
		}
	}
	return normalized, false
}
