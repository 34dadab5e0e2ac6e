package sentiment

var portuguesePositive = []string{
	"bom", "boa", "bons", "boas", "ótimo", "ótima", "otimo", "excelente", "maravilhoso", "maravilhosa",
	"adorei", "adoro", "amei", "amo", "gostei", "gosto", "feliz", "incrível", "incrivel", "perfeito",
	"perfeita", "sucesso", "melhor", "lindo", "linda", "recomendo", "satisfeito", "satisfeita",
	"eficiente", "rápido", "rapido", "fantástico", "fantástica", "positivo", "positiva", "parabéns",
	"legal", "top", "aprovado", "qualidade", "confiável", "seguro", "elogio", "inovador", "vitória",
}

var portugueseNegative = []string{
	"ruim", "péssimo", "péssima", "pessimo", "horrível", "horrivel", "terrível", "terrivel", "odiei",
	"odeio", "detestei", "triste", "problema", "problemas", "falha", "erro", "pior", "lento", "lenta",
	"caro", "decepcionante", "decepção", "insatisfeito", "insatisfeita", "fraude", "golpe",
	"reclamação", "reclamacao", "defeito", "quebrado", "atraso", "negativo", "negativa", "lixo",
	"absurdo", "vergonha", "crise", "escândalo", "prejuízo", "denúncia", "abandono",
}

var portugueseNegators = []string{
	"não", "nao", "nunca", "jamais", "nem", "nenhum", "nenhuma", "sem",
}

var portugueseIntensifiers = map[string]float64{
	"muito":         1.5,
	"muita":         1.5,
	"bastante":      1.5,
	"super":         1.5,
	"demais":        1.5,
	"tão":           1.3,
	"realmente":     1.3,
	"totalmente":    1.8,
	"extremamente":  2.0,
	"absolutamente": 2.0,
}

var englishPositive = []string{
	"good", "great", "excellent", "amazing", "love", "loved", "like", "liked", "happy", "awesome",
	"best", "perfect", "wonderful", "fantastic", "recommend", "success", "reliable", "fast",
	"positive", "impressive", "brilliant", "win", "praise", "innovative", "secure",
}

var englishNegative = []string{
	"bad", "terrible", "awful", "horrible", "hate", "hated", "worst", "poor", "slow", "broken",
	"fail", "failed", "failure", "problem", "problems", "scam", "fraud", "disappointing",
	"negative", "bug", "outage", "crisis", "scandal", "lawsuit", "complaint",
}

var englishNegators = []string{
	"not", "no", "never", "don't", "doesn't", "didn't", "isn't", "wasn't", "won't", "without", "nor",
}

var englishIntensifiers = map[string]float64{
	"very":       1.5,
	"really":     1.3,
	"so":         1.3,
	"super":      1.5,
	"totally":    1.8,
	"extremely":  2.0,
	"incredibly": 2.0,
}
