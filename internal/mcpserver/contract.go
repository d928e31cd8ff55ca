package mcpserver

// RecipeFormatContract describes the recipes CSV schema that LLM consumers
// should follow when producing or editing recipe definitions.
const RecipeFormatContract = `# Filmtag Recipe Format Contract

Recipes are rows of a CSV file. Each row is one recipe definition.

## Columns

` + "```" + `csv
filmsim,FilmMode,DevelopmentDynamicRange,ColorChromeEffect,ColorChromeFXBlue,GrainEffectSize,GrainEffectRoughness,ColorTemperature,WhiteBalanceFineTune,HighlightTone,ShadowTone,Saturation,Sharpness,NoiseReduction,Clarity
` + "```" + `

## Rules

1. **The filmsim column is required.** It holds the recipe name and is the
   value written back to matched photos as a keyword.
2. **The other 14 columns are the join attributes.** A photo matches a recipe
   only when ALL 14 values are equal, string for string, after sentinel
   normalization. Comparison is exact and case sensitive.
3. **Use the sentinel "NA" for attributes the recipe does not set.** The
   matcher rewrites empty cells to "NA" before joining, so a blank cell and
   "NA" mean the same thing.
4. **Values must match what exiftool reports.** For example FilmMode values
   look like "F2/Velvia" and WhiteBalanceFineTune like "Red +40, Blue -20".
   Export a sample photo first to see the exact forms.
5. **Missing columns are tolerated but warned about.** A column absent from
   the file is treated as "NA" for every recipe, which usually over-matches.
   Always provide all 14 columns.
6. **Recipe names may repeat.** Duplicate names with different attribute
   values are allowed; identical attribute rows cause duplicate-definition
   warnings because every photo then matches both.

## Example

` + "```" + `csv
filmsim,FilmMode,DevelopmentDynamicRange,ColorChromeEffect,ColorChromeFXBlue,GrainEffectSize,GrainEffectRoughness,ColorTemperature,WhiteBalanceFineTune,HighlightTone,ShadowTone,Saturation,Sharpness,NoiseReduction,Clarity
Kodachrome 64,F2/Velvia,200,Strong,Off,Small,Weak,NA,"Red +40, Blue -20",-1,+2,+1,-1,-2,0
McCurry,F2/Velvia,400,Strong,Weak,NA,NA,7100K,"Red +2, Blue -3",-2,+3,+2,0,-4,NA
` + "```" + `
`
