package patch

// Names of the built-in PriceScraperService fix rules.
const (
	RuleRemoveDuplicateSpotify = "remove-duplicate-spotify-case"
	RuleInjectExtractors       = "inject-deepseek-gemini-extractors"
)

// space is Unicode-aware whitespace. RE2's \s is ASCII-only and misses
// \v, the \x1c-\x1f separators, NEL and Unicode spaces such as NBSP.
const space = `[\s\x{0B}\x{1C}-\x{1F}\x{85}\p{Z}]+`

// duplicateSpotifyCase matches the Hotstar case immediately followed by a
// repeated Spotify case. Group 1 keeps the Hotstar case.
const duplicateSpotifyCase = `(case "Hotstar":` + space + `price = extractHotstarPrice\(doc\);` + space + `break;` + space +
	`)case "Spotify":` + space + `price = extractSpotifyPrice\(doc\);` + space + `break;` + space

// missingExtractors is spliced before the class's closing brace.
const missingExtractors = `
    // DeepSeek price extraction
    private Double extractDeepSeekPrice(Document doc) {
        // DeepSeek is API-based, pay-per-use (not monthly subscription)
        // Return 0 as it's not a fixed monthly subscription
        return 0.0; // Free tier / Pay-as-you-go
    }

    // Gemini price extraction from subscriptions page
    private Double extractGeminiPrice(Document doc) {
        // Gemini pricing page shows different tiers
        String pageText = doc.text();

        // Try to find INR/month prices
        Pattern inrPattern = Pattern.compile("₹\\s*([\\d,]+)\\s*INR/month");
        Matcher inrMatcher = inrPattern.matcher(pageText);
        if (inrMatcher.find()) {
            try {
                String priceStr = inrMatcher.group(1).replace(",", "");
                Double price = Double.parseDouble(priceStr);
                // Filter for reasonable Gemini pricing
                if (price >= 1000 && price <= 3000) {
                    return price;
                }
            } catch (NumberFormatException e) {
                logger.warn("Failed to parse Gemini price");
            }
        }

        // Fallback to known Gemini Advanced price
        return 1950.0;
    }
`

// BuiltinRules returns the PriceScraperService fix: drop the duplicated
// Spotify case, then add the DeepSeek and Gemini extractors.
func BuiltinRules() []Rule {
	return []Rule{
		{
			Name:        RuleRemoveDuplicateSpotify,
			Kind:        KindRegex,
			Pattern:     duplicateSpotifyCase,
			Replacement: "${1}",
		},
		{
			Name:        RuleInjectExtractors,
			Kind:        KindInsertBeforeFinalBrace,
			Replacement: missingExtractors,
		},
	}
}
