// Package prompts holds the instruction templates sent to the language model
// for routing, relevance grading, answer generation and hallucination grading.
package prompts

import "fmt"

// RouterSystem decides between the local vectorstore and web search.
// JSON keys the judgment prompts ask the model to answer under.
const (
	RouterKey        = "datasource"
	RelevanceKey     = "relevant"
	HallucinationKey = "binary_evaluation"
)

const RouterSystem = `
You are an expert at routing a user question to a vectorstore or web search.
The vectorstore contains documents related to Cricket and cricket records.
Use the vectorstore for questions on these topics. For all else, and especially for current events, use web-search.
`

const routerUser = `Here's the user question: %s

Think carefully, and objectively assess whether the question should be routed to datastore or websearch.

Return JSON with single key, "datasource", that is 'websearch' or 'vectorstore' depending on the question.
`

// RelevanceSystem grades one retrieved document against the question.
const RelevanceSystem = `
You are an expert at checking the relevance of a document to a user question.
If the document contains keyword(s) or semantic meaning related to the question, grade it as relevant.
`

const relevanceUser = `
Here is the retrieved document:

##Document-Start##
%s
##Document-End##

Here is the user question: %s

Think carefully, and objectively assess whether the document contains at least some information that is relevant to the question.

Return JSON with single key, relevant, that is either 'yes' or 'no' indicating whether the document contains at least some information that is relevant to the question.
`

const ragQA = `
You are an assistant for question-answering tasks.

Here is the context to use to answer the question:

##Context-Start##
%s
##Context-End##

Think carefully about the above context.

Now, review the user question: %s

Provide an answer to this questions using the above context.

Answer:`

// HallucinationSystem grades an answer against the facts it was given.
const HallucinationSystem = `You are a teacher grading a quiz.  You will be given FACTS and a STUDENT ANSWER.

Here is the grade criteria to follow:
(1) Ensure the STUDENT ANSWER is grounded in the FACTS.
(2) Ensure the STUDENT ANSWER does not contain "hallucinated" information outside the scope of the FACTS.

Evaluate the STUDENT ANSWER and provide the evaluation result (good | bad) as follows:
(1) good: An evaluation of good means that the student's answer meets all of the criteria.
(2) bad: An evaluation of bad means that the student's answer does not meet all of the criteria.

Explain your reasoning in a step-by-step manner to ensure your reasoning and conclusion are correct.
`

const hallucinationUser = `
FACTS:

 %s

STUDENT ANSWER: %s

Return JSON with two keys, binary_evaluation is 'good' or 'bad' indicating whether the STUDENT ANSWER is grounded in the FACTS. And a key, explanation, that contains an explanation of the evaluation.
`

// Router formats the routing payload for a question.
func Router(question string) string {
	return fmt.Sprintf(routerUser, question)
}

// Relevance formats the relevance payload for one document.
func Relevance(document, question string) string {
	return fmt.Sprintf(relevanceUser, document, question)
}

// RAG formats the generation prompt from joined context and the question.
func RAG(context, question string) string {
	return fmt.Sprintf(ragQA, context, question)
}

// Hallucination formats the grading payload for an answer.
func Hallucination(documents, answer string) string {
	return fmt.Sprintf(hallucinationUser, documents, answer)
}
