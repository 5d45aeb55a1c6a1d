package crawl

// DefaultTargets returns the standard seed set for ML resource discovery
func DefaultTargets() []Target {
	return []Target{
		{StartURL: "https://www.geeksforgeeks.org/machine-learning/", MaxDepth: 2, Classifier: GeeksforGeeksClassifier{}},

		{StartURL: "https://www.kaggle.com/datasets", MaxDepth: 2, Classifier: KaggleClassifier{}},
		{StartURL: "https://www.kaggle.com/models", MaxDepth: 2, Classifier: KaggleClassifier{}},

		{StartURL: "https://medium.com/tag/machine-learning/latest", MaxDepth: 3, Classifier: MediumClassifier{}},
		{StartURL: "https://towardsdatascience.com/tagged/machine-learning", MaxDepth: 3, Classifier: TowardsDataScienceClassifier{}},
		{StartURL: "https://towardsdatascience.com/tagged/deep-learning", MaxDepth: 2, Classifier: TowardsDataScienceClassifier{}},

		{StartURL: "https://machinelearningmastery.com/category/deep-learning/", MaxDepth: 2, Classifier: MLMasteryClassifier{}},

		{StartURL: "https://arxiv.org/list/cs.LG/recent", MaxDepth: 2, Classifier: ArxivClassifier{}},
		{StartURL: "https://arxiv.org/list/cs.AI/recent", MaxDepth: 2, Classifier: ArxivClassifier{}},

		{StartURL: "https://paperswithcode.com/methods/category/convolutional-neural-networks", MaxDepth: 2, Classifier: PapersWithCodeClassifier{}},
	}
}
