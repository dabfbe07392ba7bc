package main

import "github.com/chazu/nalm/vm"

// replText holds the user-facing REPL strings of one language.
type replText struct {
	header  string
	goodbye string
	failure string
	docs    map[string]string // command name -> description; vm docs when nil
}

var replTexts = map[string]replText{
	"eng": {
		header:  "NALM is a text-based programming language. The available commands are:",
		goodbye: "Goodbye",
		failure: "An error occurred",
	},
	"ita": {
		header:  "NALM è un linguaggio di programmazione testuale. I comandi disponibili sono:",
		goodbye: "Arrivederci",
		failure: "Si è verificato un errore",
		docs: map[string]string{
			"PUSH":    "Inserisce un valore nello stack",
			"POP":     "Rimuove il valore in cima allo stack",
			"PRINT":   "Stampa il valore in cima allo stack senza rimuoverlo",
			"ADD":     "Somma i due valori in cima allo stack (concatena due stringhe)",
			"SUB":     "Sottrae il valore in cima allo stack da quello sottostante",
			"MUL":     "Moltiplica i due valori in cima allo stack",
			"DIV":     "Divide il valore sottostante per quello in cima allo stack",
			"MOD":     "Resto della divisione del valore sottostante per quello in cima",
			"SWAP":    "Scambia i due valori in cima allo stack",
			"DUP":     "Duplica il valore in cima allo stack",
			"CLEAR":   "Svuota lo stack",
			"MIN":     "Tiene il minore dei due valori in cima allo stack",
			"MAX":     "Tiene il maggiore dei due valori in cima allo stack",
			"EQUAL":   "Inserisce true se i due valori in cima allo stack sono uguali",
			"GREATER": "Inserisce true se il valore sottostante è maggiore di quello in cima",
			"LESS":    "Inserisce true se il valore sottostante è minore di quello in cima",
			"NOT":     "Nega il booleano in cima allo stack",
			"AND":     "Inserisce true se entrambi i valori in cima sono true",
			"OR":      "Inserisce true se almeno uno dei valori in cima è true",
			"GOTO":    "Estrae una condizione e poi una destinazione; salta se la condizione è vera",
			"NUM":     "Inserisce il numero di valori nello stack",
			"INPUT":   "Legge una riga di input e la inserisce come stringa",
			"INT":     "Trasforma il valore in cima allo stack in un intero",
			"FLOAT":   "Trasforma il valore in cima allo stack in un float",
			"STRING":  "Trasforma il valore in cima allo stack in una stringa",
			"COMMENT": "Ignora l'istruzione",
			"STORE":   "Estrae un valore e poi una chiave, e salva il valore con la chiave",
			"LOAD":    "Estrae una chiave e inserisce il valore salvato con essa",
			"IMPORT":  "Estrae un nome di file e ne accoda le istruzioni, che vengono eseguite dopo",
			"INCLUDE": "Estrae un nome di file e ne accoda le istruzioni senza eseguirle",
			"END":     "Termina l'esecuzione del programma",
			"DEFINE":  "Estrae un numero, un nome e altrettanti comandi, e definisce una funzione",
			"COMPILE": "Estrae un nome di file e vi scrive il programma come sorgente Go",
		},
	},
}

func (r replText) doc(c vm.Command) string {
	if d, ok := r.docs[c.Name]; ok {
		return d
	}
	return c.Doc
}
